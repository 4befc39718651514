package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/service"
)

type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args service.UpdateStatusArgs) (*domain.Order, error)
	Cancel(ctx context.Context, clientID, orderID int64) (*domain.Order, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.OrderStatusType) ([]domain.Order, error)
	GetByID(ctx context.Context, orderID, actorID int64, role domain.RoleType) (*domain.Order, error)
}

type DeliveryServicer interface {
	ListAvailable(ctx context.Context, courier *domain.Coordinates) ([]service.AvailableOrder, error)
	Accept(ctx context.Context, orderID, courierID int64) (*domain.Order, error)
	Refuse(ctx context.Context, orderID int64) (*domain.Order, error)
	CancelClaimed(ctx context.Context, orderID, courierID int64) (*domain.Order, error)
	ListByCourier(ctx context.Context, courierID int64, status *domain.OrderStatusType) ([]domain.Order, error)
	UpdateLocation(ctx context.Context, orderID, courierID int64, coords domain.Coordinates) error
}
