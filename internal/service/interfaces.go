package service

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	CreateLines(ctx context.Context, orderID int64, lines []repoargs.CreateOrderLine) ([]domain.OrderLine, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	LockByID(ctx context.Context, id int64) (*domain.Order, error)
	GetLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.OrderStatusType) ([]domain.Order, error)
	GetByCourierID(ctx context.Context, courierID int64, status *domain.OrderStatusType) ([]domain.Order, error)
	GetAvailable(ctx context.Context) ([]repoargs.AvailableOrder, error)
	UpdateStatus(ctx context.Context, args repoargs.UpdateOrderStatus) (*domain.Order, error)
	Claim(ctx context.Context, orderID, courierID int64) (*domain.Order, error)
	RefuseUnclaimed(ctx context.Context, orderID int64) (*domain.Order, error)
	ReleaseClaim(ctx context.Context, orderID, courierID int64) (*domain.Order, error)
	MerchantUserID(ctx context.Context, orderID int64) (int64, error)
}

type ProductRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	Reserve(ctx context.Context, productID int64, quantity int32) error
	Release(ctx context.Context, productID int64, quantity int32) error
}

type MerchantRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Merchant, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, orderID int64, method domain.PaymentMethodType) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
	SettleCash(ctx context.Context, orderID int64) error
}

type NotificationRepository interface {
	Create(ctx context.Context, args repoargs.CreateNotification) (*domain.Notification, error)
}

type CourierLocationRepository interface {
	Upsert(ctx context.Context, courierID int64, coords domain.Coordinates) error
}

// Broadcaster pushes events to live-observer dashboards. Implementations
// must be safe for concurrent use; failures are logged and never fail
// the operation that produced the event.
type Broadcaster interface {
	Publish(event string, data []byte) error
}
