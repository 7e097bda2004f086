package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iorderitemrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iorderrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iproductrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/postgres"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/uow"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/order"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/orderitem"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
	"github.com/jackc/pgx/v5/pgconn"
)

// unitOfWork is the transactional boundary the placement engine runs in.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.PostgresRepository
	OrderRepository() iorderrepo.PostgresRepository
	OrderItemRepository() iorderitemrepo.PostgresRepository
}

// OrderService places orders and reads a user's order history.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how transactions are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// PlaceOrder atomically validates stock for every requested line, decrements
// it and persists the order with its items. Either everything commits or
// nothing does.
//
// Line items are processed strictly in the order submitted. Each iteration
// takes a row-level exclusive lock on the product before checking stock, so
// two concurrent placements against the same product serialize and cannot
// jointly oversell. A duplicated product is locked and checked twice; the
// second read sees the first decrement of the same transaction.
//
// Failures map to the order error taxonomy: ErrEmptyOrder (rejected before
// any transaction is opened), ProductNotFoundError, InsufficientStockError,
// ErrConcurrencyConflict (deadlock or lock-wait timeout; safe to retry the
// whole call) and PersistenceError. On any of them the transaction is rolled
// back and no stock change, order or item survives.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	userID int64,
	items []orderitem.NewOrderItem,
) (*order.Order, error) {
	if len(items) == 0 {
		return nil, order.ErrEmptyOrder
	}

	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, classifyStorageErr(err)
	}
	defer func() {
		// No-op after a successful commit; full rollback on every error path.
		if err := work.Rollback(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to roll back placement transaction", "error", err)
		}
	}()

	created, err := work.OrderRepository().Insert(ctx, order.Order{
		UserID:    userID,
		Status:    order.StatusCreated,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	orderItems := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		p, err := work.ProductRepository().GetForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &order.ProductNotFoundError{ProductID: item.ProductID}
			}

			return nil, classifyStorageErr(err)
		}

		if p.Stock < item.Quantity {
			return nil, &order.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   item.Quantity,
				Available:   p.Stock,
			}
		}

		if err := work.ProductRepository().DecrementStock(ctx, p.ID, item.Quantity); err != nil {
			return nil, classifyStorageErr(err)
		}

		// Price captured under the lock: consistent with the stock just
		// checked, frozen from here on.
		orderItems = append(orderItems, orderitem.OrderItem{
			OrderID:        created.ID,
			ProductID:      p.ID,
			Quantity:       item.Quantity,
			UnitPriceCents: p.PriceCents,
			ProductName:    p.Name,
		})
	}

	inserted, err := work.OrderItemRepository().BulkInsert(ctx, orderItems)
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	if err := work.Commit(ctx); err != nil {
		return nil, classifyStorageErr(err)
	}

	created.OrderItems = inserted

	return created, nil
}

// ListUserOrders returns a user's orders, newest first, each with its items
// and the referenced products' current names. Items for all orders are
// batch-loaded in one query. An empty history is a valid empty result.
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		UserIds: []int64{userID},
	})
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIds := make([]int64, len(orders))
	for i, o := range orders {
		orderIds[i] = o.ID
	}

	items, err := work.OrderItemRepository().QueryWithProductNames(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: orderIds,
	})
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	byOrder := make(map[int64][]orderitem.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].OrderItems = byOrder[orders[i].ID]
	}

	return orders, nil
}

// Postgres SQLSTATE codes that mean the transaction lost a race rather than
// hit a real failure: serialization_failure, deadlock_detected,
// lock_not_available.
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// classifyStorageErr folds raw storage failures into the placement taxonomy.
// Deadlocks and lock-wait timeouts become ErrConcurrencyConflict, which the
// caller may retry wholesale since nothing committed. Everything else becomes
// a PersistenceError.
func classifyStorageErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
			return fmt.Errorf("%w: %s", order.ErrConcurrencyConflict, pgErr.Code)
		}
	}

	return &order.PersistenceError{Err: err}
}
