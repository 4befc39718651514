package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type PaymentRepository struct {
	db uow.DBTX
}

func NewPaymentRepository(db uow.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (p *PaymentRepository) Create(
	ctx context.Context,
	orderID int64,
	method domain.PaymentMethodType,
) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO payments (order_id, method, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, order_id, method, status`,
		orderID, method, domain.PaymentStatusPending,
	)
	var payment domain.Payment
	if err := row.Scan(&payment.ID, &payment.CreatedAt, &payment.OrderID, &payment.Method, &payment.Status); err != nil {
		return nil, convertErr(err, "creating payment for order %d", orderID)
	}
	return &payment, nil
}

func (p *PaymentRepository) FindByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `
		SELECT id, created_at, order_id, method, status
		FROM payments WHERE order_id = $1`, orderID)
	var payment domain.Payment
	if err := row.Scan(&payment.ID, &payment.CreatedAt, &payment.OrderID, &payment.Method, &payment.Status); err != nil {
		return nil, convertErr(err, "finding payment for order %d", orderID)
	}
	return &payment, nil
}

// SettleCash marks a cash payment paid on delivery. Non-cash orders are
// settled by the payment collaborator, so zero affected rows is not an error.
func (p *PaymentRepository) SettleCash(ctx context.Context, orderID int64) error {
	_, err := p.db.Exec(ctx, `
		UPDATE payments SET status = $1
		WHERE order_id = $2 AND method = $3`,
		domain.PaymentStatusPaid, orderID, domain.PaymentMethodCash,
	)
	if err != nil {
		return convertErr(err, "settling cash payment for order %d", orderID)
	}
	return nil
}
