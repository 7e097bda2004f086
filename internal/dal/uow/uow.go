package uow

import (
	"context"
	"errors"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iorderitemrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iorderrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iproductrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/postgres"
	orderrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/orderitem/postgres"
	productrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/product/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unitOfWork scopes the placement repositories to a single transaction.
// Until Begin is called the repositories run against the pool; after Begin
// they are rebound to the transaction, and every statement they issue is
// atomic with the rest of the unit.
type unitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	productRepo   iproductrepo.PostgresRepository
	orderRepo     iorderrepo.PostgresRepository
	orderItemRepo iorderitemrepo.PostgresRepository
}

func NewUnitOfWork(db *postgres.Client) *unitOfWork {
	return &unitOfWork{
		pool:          db.Pool(),
		productRepo:   productrepo.NewPostgresProductRepository(db.Pool()),
		orderRepo:     orderrepo.NewPostgresOrderRepository(db.Pool()),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(db.Pool()),
	}
}

func (u *unitOfWork) ProductRepository() iproductrepo.PostgresRepository {
	return u.productRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.PostgresRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.PostgresRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	u.tx = tx
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback discards the transaction. Calling it after a successful Commit is
// a no-op, so it is safe to defer unconditionally.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
