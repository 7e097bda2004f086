package product

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item. Price is fixed-point with two implied
// fraction digits, stored as cents. Stock never goes below zero; the only
// mutation path is the order placement transaction.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"priceCents"`
	Stock        int       `json:"stock"`
	ImageUrl     string    `json:"imageUrl"`
	Category     string    `json:"category"`
	IsVegan      bool      `json:"isVegan"`
	IsGlutenFree bool      `json:"isGlutenFree"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateProductModel carries a partial product update. Nil fields are left
// untouched.
type UpdateProductModel struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	PriceCents   *int64  `json:"priceCents,omitempty"`
	Stock        *int    `json:"stock,omitempty"`
	ImageUrl     *string `json:"imageUrl,omitempty"`
	Category     *string `json:"category,omitempty"`
	IsVegan      *bool   `json:"isVegan,omitempty"`
	IsGlutenFree *bool   `json:"isGlutenFree,omitempty"`
}

// Empty reports whether the update carries no changes.
func (u *UpdateProductModel) Empty() bool {
	return u.Name == nil && u.Description == nil && u.PriceCents == nil &&
		u.Stock == nil && u.ImageUrl == nil && u.Category == nil &&
		u.IsVegan == nil && u.IsGlutenFree == nil
}
