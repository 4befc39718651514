package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderUnavailable  = errors.New("order is no longer available")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the first product that failed the
// reservation check; the whole reservation is rolled back.
type InsufficientStockError struct {
	ProductID int64
}

func NewInsufficientStockError(productID int64) error {
	return &InsufficientStockError{ProductID: productID}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type ProductNotFoundError struct {
	ProductID int64
}

func NewProductNotFoundError(productID int64) error {
	return &ProductNotFoundError{ProductID: productID}
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// ErrorCode maps an error to the stable machine-readable code exposed on
// the API so dashboards can branch on it (e.g. refresh the available
// list on order_unavailable).
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrEmptyOrder):
		return "empty_order"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrOrderUnavailable):
		return "order_unavailable"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "internal_error"
	}
}
