package repoargs

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-delivery/internal/domain"
)

type CreateOrder struct {
	ClientID int64
	Status   domain.OrderStatusType
	Total    decimal.Decimal
	Address  string
	Location *domain.Coordinates
}

type CreateOrderLine struct {
	ProductID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

// UpdateOrderStatus is a conditional update: the write applies only while
// the row still holds Expected, so a concurrent transition loses cleanly.
type UpdateOrderStatus struct {
	OrderID     int64
	Expected    domain.OrderStatusType
	Target      domain.OrderStatusType
	CourierID   *int64
	DeliveredAt *time.Time
}

// AvailableOrder annotates an unassigned order with the pickup merchant
// of its first line, used for distance sorting.
type AvailableOrder struct {
	Order            domain.Order
	MerchantName     string
	MerchantAddress  string
	MerchantLocation *domain.Coordinates
}
