package iorderitemrepo

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/orderitem"
)

// PostgresRepository is an interface for the order item postgres repository.
type PostgresRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	// QueryWithProductNames batch-loads items for a set of orders, each item
	// joined with the current product name. One round trip regardless of the
	// number of orders.
	QueryWithProductNames(ctx context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error)
}
