package iproductrepo

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
)

// PostgresRepository is an interface for the product postgres repository.
//
// GetForUpdate and DecrementStock are only meaningful when the repository is
// bound to a transaction: GetForUpdate takes the row-level exclusive lock that
// serializes concurrent placements touching the same product, and
// DecrementStock must run while that lock is held.
type PostgresRepository interface {
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	GetForUpdate(ctx context.Context, id int64) (*product.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
	Insert(ctx context.Context, p product.Product) (*product.Product, error)
	Update(ctx context.Context, id int64, upd *product.UpdateProductModel) (*product.Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
