package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	notifier  *Notifier
}

func NewOrderService(u uow.UOW, notifier *Notifier) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
		notifier:  notifier,
	}, nil
}

type OrderLineInput struct {
	ProductID int64
	Quantity  int32
}

type CreateOrderArgs struct {
	ClientID      int64
	Lines         []OrderLineInput
	Address       string
	PaymentMethod domain.PaymentMethodType
	Location      *domain.Coordinates
}

// Create places an order: reserves stock for every line, captures unit
// prices, and persists the order, its lines, the pending payment record
// and the merchant notification as one unit of work. Any failure rolls
// the whole operation back, including the stock decrements.
func (o *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	if len(args.Lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr //nolint:wrapcheck
		}

		products, productsErr := o.loadProducts(c, productRepo, args.Lines)
		if productsErr != nil {
			return productsErr
		}

		total := decimal.Zero
		var lines = make([]repoargs.CreateOrderLine, 0, len(args.Lines))
		for _, in := range args.Lines {
			product := products[in.ProductID]
			if reserveErr := productRepo.Reserve(c, in.ProductID, in.Quantity); reserveErr != nil {
				return reserveErr //nolint:wrapcheck
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt32(in.Quantity)))
			lines = append(lines, repoargs.CreateOrderLine{
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: product.Price,
			})
		}

		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.CreateOrder{
			ClientID: args.ClientID,
			Status:   domain.OrderStatusPending,
			Total:    total,
			Address:  args.Address,
			Location: args.Location,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		var linesErr error
		order.Lines, linesErr = orderRepo.CreateLines(c, order.ID, lines)
		if linesErr != nil {
			return linesErr //nolint:wrapcheck
		}

		paymentRepo, paymentRepoErr := uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
		if paymentRepoErr != nil {
			return paymentRepoErr //nolint:wrapcheck
		}
		if _, payErr := paymentRepo.Create(c, order.ID, args.PaymentMethod); payErr != nil {
			return payErr //nolint:wrapcheck
		}

		return o.notifyMerchant(c, tx, order, products[args.Lines[0].ProductID].MerchantID)
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}
	return order, nil
}

// loadProducts fetches all referenced products and verifies every line
// points at an existing one.
func (o *OrderService) loadProducts(
	ctx context.Context,
	productRepo ProductRepository,
	lines []OrderLineInput,
) (map[int64]domain.Product, error) {
	var ids = make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var byID = make(map[int64]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, domain.NewProductNotFoundError(line.ProductID)
		}
	}
	return byID, nil
}

// notifyMerchant writes the new-order notification inside the creation
// transaction: the merchant must learn about an order exactly when it
// exists.
func (o *OrderService) notifyMerchant(ctx context.Context, tx uow.TX, order *domain.Order, merchantID int64) error {
	merchantRepo, merchantRepoErr := uow.GetAs[MerchantRepository](tx, uow.RepositoryName(repoargs.MerchantRepoName))
	if merchantRepoErr != nil {
		return merchantRepoErr //nolint:wrapcheck
	}
	notifRepo, notifRepoErr := uow.GetAs[NotificationRepository](tx, uow.RepositoryName(repoargs.NotificationRepoName))
	if notifRepoErr != nil {
		return notifRepoErr //nolint:wrapcheck
	}

	merchant, merchantErr := merchantRepo.FindByID(ctx, merchantID)
	if merchantErr != nil {
		return merchantErr //nolint:wrapcheck
	}
	_, notifErr := notifRepo.Create(ctx, repoargs.CreateNotification{
		UserID:  merchant.UserID,
		Message: fmt.Sprintf("Nouvelle commande #%d", order.ID),
		Type:    domain.NotificationNewOrder,
	})
	return notifErr //nolint:wrapcheck
}

type UpdateStatusArgs struct {
	OrderID int64
	ActorID int64
	Role    domain.RoleType
	Target  domain.OrderStatusType
}

// UpdateStatus applies one transition of the order state machine. The
// order row is locked for the duration of the check and write, so no
// concurrent operation can apply against stale state. Fails with
// ErrOrderNotFound, ErrForbidden or ErrInvalidTransition.
func (o *OrderService) UpdateStatus(ctx context.Context, args UpdateStatusArgs) (*domain.Order, error) {
	if !domain.ValidStatus(args.Target) {
		return nil, domain.ErrInvalidTransition
	}
	target := domain.NormalizeStatus(args.Target)

	var updated *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		order, lockErr := orderRepo.LockByID(c, args.OrderID)
		if lockErr != nil {
			if errors.Is(lockErr, domain.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return lockErr //nolint:wrapcheck
		}

		if args.Role == domain.RoleMerchant {
			merchantUserID, merchantErr := orderRepo.MerchantUserID(c, order.ID)
			if merchantErr != nil {
				return merchantErr //nolint:wrapcheck
			}
			if merchantUserID != args.ActorID {
				return domain.ErrForbidden
			}
		}

		if checkErr := domain.CheckTransition(order.Status, args.Role, target); checkErr != nil {
			return checkErr
		}

		upd := repoargs.UpdateOrderStatus{
			OrderID:  order.ID,
			Expected: order.Status,
			Target:   target,
		}
		if args.Role == domain.RoleCourier {
			switch target {
			case domain.OrderStatusInTransit:
				// Moving to in_transit through this path claims the order.
				if order.CourierID != nil && *order.CourierID != args.ActorID {
					return domain.ErrOrderUnavailable
				}
				if order.CourierID == nil {
					upd.CourierID = &args.ActorID
				}
			case domain.OrderStatusDelivered:
				if order.CourierID == nil || *order.CourierID != args.ActorID {
					return domain.ErrForbidden
				}
			}
		}

		if target == domain.OrderStatusDelivered {
			now := time.Now()
			upd.DeliveredAt = &now

			paymentRepo, paymentRepoErr := uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
			if paymentRepoErr != nil {
				return paymentRepoErr //nolint:wrapcheck
			}
			if settleErr := paymentRepo.SettleCash(c, order.ID); settleErr != nil {
				return settleErr //nolint:wrapcheck
			}
		}

		var updErr error
		updated, updErr = orderRepo.UpdateStatus(c, upd)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating status of order %d: %w", args.OrderID, txErr)
	}

	o.notifyClientStatus(updated)
	return updated, nil
}

// Cancel is the client-side cancellation: permitted only while the order
// is still pending; reserved stock is restored in the same unit of work.
func (o *OrderService) Cancel(ctx context.Context, clientID, orderID int64) (*domain.Order, error) {
	var cancelled *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		order, lockErr := orderRepo.LockByID(c, orderID)
		if lockErr != nil {
			if errors.Is(lockErr, domain.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return lockErr //nolint:wrapcheck
		}
		// Ownership failures are indistinguishable from missing orders on
		// purpose: clients must not be able to probe foreign order ids.
		if order.ClientID != clientID {
			return domain.ErrOrderNotFound
		}
		if checkErr := domain.CheckTransition(order.Status, domain.RoleClient, domain.OrderStatusCancelled); checkErr != nil {
			return checkErr
		}

		lines, linesErr := orderRepo.GetLines(c, orderID)
		if linesErr != nil {
			return linesErr //nolint:wrapcheck
		}
		productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr //nolint:wrapcheck
		}
		for _, line := range lines {
			if releaseErr := productRepo.Release(c, line.ProductID, line.Quantity); releaseErr != nil {
				return releaseErr //nolint:wrapcheck
			}
		}

		var updErr error
		cancelled, updErr = orderRepo.UpdateStatus(c, repoargs.UpdateOrderStatus{
			OrderID:  orderID,
			Expected: order.Status,
			Target:   domain.OrderStatusCancelled,
		})
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancelling order %d: %w", orderID, txErr)
	}

	o.notifyClientStatus(cancelled)
	return cancelled, nil
}

// GetByClientID returns the client's orders sorted by creation date descending.
func (o *OrderService) GetByClientID(
	ctx context.Context,
	clientID int64,
	status *domain.OrderStatusType,
) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetByClientID(ctx, clientID, status)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// GetByID returns one order with its lines, enforcing read access:
// clients see their own orders, merchants the orders of their own shop.
func (o *OrderService) GetByID(
	ctx context.Context,
	orderID, actorID int64,
	role domain.RoleType,
) (*domain.Order, error) {
	order, err := o.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err //nolint:wrapcheck
	}

	switch role {
	case domain.RoleClient:
		if order.ClientID != actorID {
			return nil, domain.ErrForbidden
		}
	case domain.RoleMerchant:
		merchantUserID, merchantErr := o.orderRepo.MerchantUserID(ctx, order.ID)
		if merchantErr != nil {
			return nil, merchantErr //nolint:wrapcheck
		}
		if merchantUserID != actorID {
			return nil, domain.ErrForbidden
		}
	}

	order.Lines, err = o.orderRepo.GetLines(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

// notifyClientStatus emits the single client-facing notification a
// transition produces. Pending has none: creation notifies the merchant.
func (o *OrderService) notifyClientStatus(order *domain.Order) {
	if order == nil {
		return
	}
	var message string
	tag := domain.NotificationOrderStatus
	switch order.Status {
	case domain.OrderStatusAccepted:
		message = fmt.Sprintf("Votre commande #%d a été acceptée", order.ID)
	case domain.OrderStatusCancelled:
		message = fmt.Sprintf("Votre commande #%d a été annulée", order.ID)
	case domain.OrderStatusInTransit:
		message = fmt.Sprintf("Votre commande #%d est en cours de livraison", order.ID)
		tag = domain.NotificationDeliveryInProgress
	case domain.OrderStatusDelivered:
		message = fmt.Sprintf("Votre commande #%d a été livrée", order.ID)
		tag = domain.NotificationOrderDelivered
	default:
		return
	}
	o.notifier.Notify(order.ClientID, message, tag)
}
