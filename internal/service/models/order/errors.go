package order

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOrder is returned when a placement carries no line items.
	// It is checked before any transaction is opened.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrConcurrencyConflict is returned when the store reports a deadlock
	// or lock-wait timeout. Nothing was committed; the caller may retry the
	// whole placement.
	ErrConcurrencyConflict = errors.New("concurrent order conflict, retry placement")
)

// ProductNotFoundError identifies a line item whose product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d does not exist", e.ProductID)
}

// InsufficientStockError identifies a line item that asked for more units
// than the product has in stock at lock time.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// PersistenceError wraps any other storage failure during the placement
// transaction.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "order persistence failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
