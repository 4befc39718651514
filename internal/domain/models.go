package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coordinates is a plain lat/lng pair supplied by external callers.
// A nil *Coordinates means the position is unknown.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Product struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	MerchantID int64
	Name       string
	Price      decimal.Decimal
	Quantity   int32
}

// Merchant is owned by the catalog collaborator; the core only reads
// the pickup location and the user id notifications are addressed to.
type Merchant struct {
	ID       int64
	UserID   int64
	Name     string
	Address  string
	Location *Coordinates
}

type Order struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClientID    int64
	CourierID   *int64
	Status      OrderStatusType
	Total       decimal.Decimal
	Address     string
	Location    *Coordinates
	DeliveredAt *time.Time
	Lines       []OrderLine
}

// OrderLine captures the unit price at order time; later price changes
// to the product never affect placed orders.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

type Payment struct {
	ID        int64
	CreatedAt time.Time
	OrderID   int64
	Method    PaymentMethodType
	Status    PaymentStatusType
}

type Notification struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	Message   string
	Type      NotificationType
	Read      bool
}
