package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type ProductRepository struct {
	db uow.DBTX
}

func NewProductRepository(db uow.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (p *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, created_at, updated_at, merchant_id, name, price, quantity
		FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, convertErr(err, "getting products by ids %v", ids)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		scanErr := rows.Scan(
			&product.ID, &product.CreatedAt, &product.UpdatedAt,
			&product.MerchantID, &product.Name, &product.Price, &product.Quantity,
		)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning product")
		}
		products = append(products, product)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting products by ids %v", ids)
	}
	return products, nil
}

// Reserve decrements available stock with the check and the write in a
// single statement, so two concurrent reservations against the same row
// cannot both pass the check. Returns InsufficientStockError or
// ProductNotFoundError on a miss.
func (p *ProductRepository) Reserve(ctx context.Context, productID int64, quantity int32) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE products
		SET quantity = quantity - $1, updated_at = now()
		WHERE id = $2 AND quantity >= $1`,
		quantity, productID,
	)
	if err != nil {
		return convertErr(err, "reserving %d of product %d", quantity, productID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if existsErr := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
	).Scan(&exists); existsErr != nil {
		return convertErr(existsErr, "checking product %d", productID)
	}
	if !exists {
		return domain.NewProductNotFoundError(productID)
	}
	return domain.NewInsufficientStockError(productID)
}

// Release restores previously reserved stock. The caller guarantees at
// most one release per order via the state machine.
func (p *ProductRepository) Release(ctx context.Context, productID int64, quantity int32) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE products
		SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2`,
		quantity, productID,
	)
	if err != nil {
		return convertErr(err, "releasing %d of product %d", quantity, productID)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewProductNotFoundError(productID)
	}
	return nil
}
