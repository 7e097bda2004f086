package iorderrepo

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/order"
)

// PostgresRepository is an interface for the order postgres repository.
type PostgresRepository interface {
	// Insert creates the order row and returns it with the generated id.
	// Inside a transaction the row stays invisible until commit.
	Insert(ctx context.Context, o order.Order) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
