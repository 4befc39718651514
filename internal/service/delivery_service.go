package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

// DeliveryService is the assignment coordinator: it matches unassigned
// orders to couriers and owns the claim/refuse/cancel flows. All claim
// writes are single-statement compare-and-sets in the repository, so at
// most one courier can win a concurrent race.
type DeliveryService struct {
	uow          uow.UOW
	orderRepo    OrderRepository
	locationRepo CourierLocationRepository
	notifier     *Notifier
}

func NewDeliveryService(u uow.UOW, notifier *Notifier) (*DeliveryService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	locationRepo, locationRepoErr := uow.GetRepositoryAs[CourierLocationRepository](
		u, uow.RepositoryName(repoargs.CourierLocationRepoName))
	if locationRepoErr != nil {
		return nil, locationRepoErr
	}
	return &DeliveryService{
		uow:          u,
		orderRepo:    orderRepo,
		locationRepo: locationRepo,
		notifier:     notifier,
	}, nil
}

// AvailableOrder is an unassigned order annotated with the pickup
// merchant and, when the courier reported a position, the great-circle
// distance to it.
type AvailableOrder struct {
	Order            domain.Order
	MerchantName     string
	MerchantAddress  string
	MerchantLocation *domain.Coordinates
	DistanceKM       *float64
}

type orderEventPayload struct {
	OrderID   int64                  `json:"order_id"`
	CourierID *int64                 `json:"courier_id,omitempty"`
	Status    domain.OrderStatusType `json:"status"`
}

type deliveryLocationPayload struct {
	OrderID   int64   `json:"order_id"`
	ClientID  int64   `json:"client_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ListAvailable returns claimable orders. With courier coordinates the
// result is sorted by distance to the merchant ascending; orders whose
// merchant has no coordinates sort last.
func (d *DeliveryService) ListAvailable(
	ctx context.Context,
	courier *domain.Coordinates,
) ([]AvailableOrder, error) {
	rows, err := d.orderRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var available = make([]AvailableOrder, len(rows))
	for i, row := range rows {
		available[i] = AvailableOrder{
			Order:            row.Order,
			MerchantName:     row.MerchantName,
			MerchantAddress:  row.MerchantAddress,
			MerchantLocation: row.MerchantLocation,
		}
		if courier != nil && row.MerchantLocation != nil {
			dist := haversineKM(*courier, *row.MerchantLocation)
			available[i].DistanceKM = &dist
		}
	}

	if courier != nil {
		sort.SliceStable(available, func(i, j int) bool {
			return distanceOrInf(available[i]) < distanceOrInf(available[j])
		})
	}
	return available, nil
}

func distanceOrInf(a AvailableOrder) float64 {
	if a.DistanceKM == nil {
		return math.Inf(1)
	}
	return *a.DistanceKM
}

// Accept claims the order for the courier. Exactly one of N concurrent
// claims succeeds; the rest fail with ErrOrderUnavailable and should
// refresh the available list rather than retry the same order.
func (d *DeliveryService) Accept(ctx context.Context, orderID, courierID int64) (*domain.Order, error) {
	order, err := d.orderRepo.Claim(ctx, orderID, courierID)
	if err != nil {
		return nil, fmt.Errorf("accepting delivery of order %d: %w", orderID, err)
	}

	d.notifier.Notify(
		order.ClientID,
		fmt.Sprintf("Votre commande #%d est en cours de livraison", order.ID),
		domain.NotificationDeliveryInProgress,
	)
	d.notifier.Broadcast(domain.EventOrderAccepted, orderEventPayload{
		OrderID:   order.ID,
		CourierID: order.CourierID,
		Status:    order.Status,
	})
	return order, nil
}

// Refuse declines an order the courier has not claimed; the order is
// terminated and the courier id stays null.
func (d *DeliveryService) Refuse(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := d.orderRepo.RefuseUnclaimed(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("refusing order %d: %w", orderID, err)
	}

	d.notifier.Broadcast(domain.EventOrderRefused, orderEventPayload{
		OrderID: order.ID,
		Status:  order.Status,
	})
	return order, nil
}

// CancelClaimed cancels a delivery the courier currently holds. The
// order is terminated and the assignment cleared; it is not re-queued.
func (d *DeliveryService) CancelClaimed(ctx context.Context, orderID, courierID int64) (*domain.Order, error) {
	order, err := d.orderRepo.ReleaseClaim(ctx, orderID, courierID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, d.explainReleaseMiss(ctx, orderID, courierID)
		}
		return nil, fmt.Errorf("cancelling delivery of order %d: %w", orderID, err)
	}

	d.notifier.Notify(
		order.ClientID,
		fmt.Sprintf("Votre commande #%d a été annulée", order.ID),
		domain.NotificationOrderStatus,
	)
	d.notifier.Broadcast(domain.EventOrderCancelled, orderEventPayload{
		OrderID: order.ID,
		Status:  order.Status,
	})
	return order, nil
}

// explainReleaseMiss distinguishes "not your delivery" from "already in
// a terminal state" after a conditional cancel found no row.
func (d *DeliveryService) explainReleaseMiss(ctx context.Context, orderID, courierID int64) error {
	order, err := d.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrOrderNotFound
		}
		return err //nolint:wrapcheck
	}
	if order.CourierID == nil || *order.CourierID != courierID {
		return domain.ErrOrderNotFound
	}
	return domain.ErrInvalidTransition
}

// ListByCourier returns the courier's deliveries, optionally filtered by status.
func (d *DeliveryService) ListByCourier(
	ctx context.Context,
	courierID int64,
	status *domain.OrderStatusType,
) ([]domain.Order, error) {
	orders, err := d.orderRepo.GetByCourierID(ctx, courierID, status)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// UpdateLocation stores the courier's position for an order they hold
// and broadcasts it for the client's live-tracking map.
func (d *DeliveryService) UpdateLocation(
	ctx context.Context,
	orderID, courierID int64,
	coords domain.Coordinates,
) error {
	order, err := d.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrOrderNotFound
		}
		return err //nolint:wrapcheck
	}
	if order.CourierID == nil || *order.CourierID != courierID {
		return domain.ErrOrderNotFound
	}

	if upsertErr := d.locationRepo.Upsert(ctx, courierID, coords); upsertErr != nil {
		return fmt.Errorf("updating location of courier %d: %w", courierID, upsertErr)
	}

	d.notifier.Broadcast(domain.EventDeliveryLocation, deliveryLocationPayload{
		OrderID:   order.ID,
		ClientID:  order.ClientID,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	})
	return nil
}
