package ordersvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iorderitemrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iorderrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iproductrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/order"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/orderitem"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory stand-in for Postgres. Per-product mutexes play
// the role of row-level locks: a fakeUOW holds them from GetForUpdate until
// Commit or Rollback, exactly like FOR UPDATE holds a row lock until the
// transaction ends.
type fakeStore struct {
	mu       sync.Mutex
	products map[int64]*product.Product
	orders   []order.Order
	items    []orderitem.OrderItem

	nextOrderID int64
	nextItemID  int64

	rowLocks map[int64]*sync.Mutex
}

func newFakeStore(products ...product.Product) *fakeStore {
	s := &fakeStore{
		products: make(map[int64]*product.Product),
		rowLocks: make(map[int64]*sync.Mutex),
	}
	for _, p := range products {
		cp := p
		s.products[p.ID] = &cp
		s.rowLocks[p.ID] = &sync.Mutex{}
	}

	return s
}

func (s *fakeStore) lockFor(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rowLocks[id]; !ok {
		s.rowLocks[id] = &sync.Mutex{}
	}

	return s.rowLocks[id]
}

func (s *fakeStore) stockOf(t *testing.T, id int64) int {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	require.True(t, ok, "product %d missing from store", id)

	return p.Stock
}

// fakeUOW implements the unitOfWork contract plus all three repository
// interfaces. Writes are staged until Commit, discarded on Rollback.
type fakeUOW struct {
	store *fakeStore

	began     bool
	committed bool

	held             []int64
	stagedDecrements map[int64]int
	stagedOrder      *order.Order
	stagedItems      []orderitem.OrderItem

	lockedSequence []int64

	beginErr      error
	commitErr     error
	insertErr     error
	bulkInsertErr error
	decrementErr  error
}

func newFakeUOW(store *fakeStore) *fakeUOW {
	return &fakeUOW{
		store:            store,
		stagedDecrements: make(map[int64]int),
	}
}

func (u *fakeUOW) Begin(_ context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	u.began = true

	return nil
}

func (u *fakeUOW) Commit(_ context.Context) error {
	if u.commitErr != nil {
		return u.commitErr
	}

	u.store.mu.Lock()
	for id, qty := range u.stagedDecrements {
		u.store.products[id].Stock -= qty
	}
	if u.stagedOrder != nil {
		u.store.orders = append(u.store.orders, *u.stagedOrder)
	}
	u.store.items = append(u.store.items, u.stagedItems...)
	u.store.mu.Unlock()

	u.committed = true
	u.releaseLocks()

	return nil
}

func (u *fakeUOW) Rollback(_ context.Context) error {
	if u.committed {
		return nil
	}
	u.stagedDecrements = make(map[int64]int)
	u.stagedOrder = nil
	u.stagedItems = nil
	u.releaseLocks()

	return nil
}

func (u *fakeUOW) releaseLocks() {
	for _, id := range u.held {
		u.store.lockFor(id).Unlock()
	}
	u.held = nil
}

func (u *fakeUOW) ProductRepository() iproductrepo.PostgresRepository {
	return &fakeProductRepo{u}
}

func (u *fakeUOW) OrderRepository() iorderrepo.PostgresRepository {
	return &fakeOrderRepo{u}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.PostgresRepository {
	return &fakeOrderItemRepo{u}
}

func (u *fakeUOW) holds(id int64) bool {
	for _, h := range u.held {
		if h == id {
			return true
		}
	}

	return false
}

type fakeProductRepo struct {
	uow *fakeUOW
}

func (r *fakeProductRepo) GetForUpdate(_ context.Context, id int64) (*product.Product, error) {
	u := r.uow
	u.lockedSequence = append(u.lockedSequence, id)

	// A row lock is reentrant within one transaction.
	if !u.holds(id) {
		u.store.lockFor(id).Lock()
		u.held = append(u.held, id)
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	p, ok := u.store.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}

	cp := *p
	// Reads inside the transaction see its own staged decrements.
	cp.Stock -= u.stagedDecrements[id]

	return &cp, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id int64, quantity int) error {
	if r.uow.decrementErr != nil {
		return r.uow.decrementErr
	}
	r.uow.stagedDecrements[id] += quantity

	return nil
}

// Catalog methods are not exercised by placement.
func (r *fakeProductRepo) Query(_ context.Context, _ *product.QueryProductsModel) ([]product.Product, error) {
	panic("not used in placement")
}
func (r *fakeProductRepo) GetByID(_ context.Context, _ int64) (*product.Product, error) {
	panic("not used in placement")
}
func (r *fakeProductRepo) Insert(_ context.Context, _ product.Product) (*product.Product, error) {
	panic("not used in placement")
}
func (r *fakeProductRepo) Update(_ context.Context, _ int64, _ *product.UpdateProductModel) (*product.Product, error) {
	panic("not used in placement")
}
func (r *fakeProductRepo) Delete(_ context.Context, _ int64) error { panic("not used in placement") }
func (r *fakeProductRepo) Count(_ context.Context) (int64, error)  { panic("not used in placement") }

type fakeOrderRepo struct {
	uow *fakeUOW
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	u := r.uow
	if u.insertErr != nil {
		return nil, u.insertErr
	}

	u.store.mu.Lock()
	u.store.nextOrderID++
	o.ID = u.store.nextOrderID
	u.store.mu.Unlock()

	u.stagedOrder = &o
	cp := o

	return &cp, nil
}

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	u := r.uow
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	var out []order.Order
	for i := len(u.store.orders) - 1; i >= 0; i-- {
		o := u.store.orders[i]
		for _, uid := range filter.UserIds {
			if o.UserID == uid {
				out = append(out, o)
			}
		}
	}

	return out, nil
}

type fakeOrderItemRepo struct {
	uow *fakeUOW
}

func (r *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	u := r.uow
	if u.bulkInsertErr != nil {
		return nil, u.bulkInsertErr
	}

	u.store.mu.Lock()
	for i := range items {
		u.store.nextItemID++
		items[i].ID = u.store.nextItemID
	}
	u.store.mu.Unlock()

	u.stagedItems = items

	return items, nil
}

func (r *fakeOrderItemRepo) QueryWithProductNames(_ context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	u := r.uow
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	var out []orderitem.OrderItem
	for _, item := range u.store.items {
		for _, oid := range filter.OrderIds {
			if item.OrderID == oid {
				if p, ok := u.store.products[item.ProductID]; ok {
					item.ProductName = p.Name
				}
				out = append(out, item)
			}
		}
	}

	return out, nil
}

func newServiceWith(store *fakeStore, hook func(*fakeUOW)) (*OrderService, *[]*fakeUOW) {
	var created []*fakeUOW
	var mu sync.Mutex
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		u := newFakeUOW(store)
		if hook != nil {
			hook(u)
		}
		mu.Lock()
		created = append(created, u)
		mu.Unlock()

		return u
	}))

	return svc, &created
}

func TestPlaceOrder_Success(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 10},
		product.Product{ID: 2, Name: "Fudge Block", PriceCents: 1200, Stock: 3},
	)
	svc, _ := newServiceWith(store, nil)

	placed, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	})
	require.NoError(t, err)
	require.NotNil(t, placed)

	assert.NotZero(t, placed.ID)
	assert.EqualValues(t, 42, placed.UserID)
	assert.Equal(t, order.StatusCreated, placed.Status)
	assert.WithinDuration(t, time.Now(), placed.CreatedAt, time.Minute)

	require.Len(t, placed.OrderItems, 2)
	assert.EqualValues(t, 350, placed.OrderItems[0].UnitPriceCents)
	assert.EqualValues(t, 1200, placed.OrderItems[1].UnitPriceCents)
	assert.Equal(t, placed.ID, placed.OrderItems[0].OrderID)

	assert.Equal(t, 8, store.stockOf(t, 1))
	assert.Equal(t, 0, store.stockOf(t, 2))
}

func TestPlaceOrder_EmptyOrderOpensNoTransaction(t *testing.T) {
	store := newFakeStore()
	svc, created := newServiceWith(store, nil)

	placed, err := svc.PlaceOrder(context.Background(), 42, nil)
	assert.Nil(t, placed)
	assert.ErrorIs(t, err, order.ErrEmptyOrder)
	assert.Empty(t, *created, "empty order must be rejected before any transaction is opened")

	placed, err = svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{})
	assert.Nil(t, placed)
	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestPlaceOrder_UnknownProductRollsBackEverything(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 10},
	)
	svc, _ := newServiceWith(store, nil)

	placed, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 4},
		{ProductID: 999, Quantity: 1},
	})
	require.Error(t, err)
	assert.Nil(t, placed)

	var notFound *order.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.EqualValues(t, 999, notFound.ProductID)

	// The first line was already decremented inside the transaction; the
	// rollback must undo it.
	assert.Equal(t, 10, store.stockOf(t, 1))
	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 7, Name: "Nougat Bar", PriceCents: 499, Stock: 2},
	)
	svc, _ := newServiceWith(store, nil)

	placed, err := svc.PlaceOrder(context.Background(), 1, []orderitem.NewOrderItem{
		{ProductID: 7, Quantity: 5},
	})
	require.Error(t, err)
	assert.Nil(t, placed)

	var insufficient *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.EqualValues(t, 7, insufficient.ProductID)
	assert.Equal(t, "Nougat Bar", insufficient.ProductName)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available)

	assert.Equal(t, 2, store.stockOf(t, 7))
}

func TestPlaceOrder_ExactStockSucceeds(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 7, Name: "Nougat Bar", PriceCents: 499, Stock: 5},
	)
	svc, _ := newServiceWith(store, nil)

	_, err := svc.PlaceOrder(context.Background(), 1, []orderitem.NewOrderItem{
		{ProductID: 7, Quantity: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.stockOf(t, 7))
}

func TestPlaceOrder_DuplicateLinesDecrementSequentially(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 3, Name: "Caramel Chews", PriceCents: 250, Stock: 5},
	)
	svc, _ := newServiceWith(store, nil)

	placed, err := svc.PlaceOrder(context.Background(), 1, []orderitem.NewOrderItem{
		{ProductID: 3, Quantity: 2},
		{ProductID: 3, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, placed.OrderItems, 2, "duplicate lines stay separate lines")
	assert.Equal(t, 2, placed.OrderItems[0].Quantity)
	assert.Equal(t, 3, placed.OrderItems[1].Quantity)
	assert.Equal(t, 0, store.stockOf(t, 3))
}

func TestPlaceOrder_DuplicateLinesSecondSeesFirstDecrement(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 3, Name: "Caramel Chews", PriceCents: 250, Stock: 4},
	)
	svc, _ := newServiceWith(store, nil)

	_, err := svc.PlaceOrder(context.Background(), 1, []orderitem.NewOrderItem{
		{ProductID: 3, Quantity: 2},
		{ProductID: 3, Quantity: 3},
	})
	require.Error(t, err)

	var insufficient *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available, "second duplicate line must see the first line's decrement")

	assert.Equal(t, 4, store.stockOf(t, 3))
}

func TestPlaceOrder_LocksFollowSubmittedOrder(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "A", PriceCents: 100, Stock: 9},
		product.Product{ID: 2, Name: "B", PriceCents: 100, Stock: 9},
		product.Product{ID: 3, Name: "C", PriceCents: 100, Stock: 9},
	)
	svc, created := newServiceWith(store, nil)

	_, err := svc.PlaceOrder(context.Background(), 1, []orderitem.NewOrderItem{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 1},
		{ProductID: 3, Quantity: 1},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, *created, 1)
	assert.Equal(t, []int64{3, 1, 3, 2}, (*created)[0].lockedSequence)
}

func TestPlaceOrder_PriceIsFrozenAtPlacement(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 10},
	)
	svc, _ := newServiceWith(store, nil)

	placed, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 1},
	})
	require.NoError(t, err)

	// Reprice the product after the fact.
	store.mu.Lock()
	store.products[1].PriceCents = 9999
	store.mu.Unlock()

	assert.EqualValues(t, 350, placed.OrderItems[0].UnitPriceCents)

	orders, err := svc.ListUserOrders(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].OrderItems, 1)
	assert.EqualValues(t, 350, orders[0].OrderItems[0].UnitPriceCents,
		"stored line keeps the snapshot taken under the lock")
}

func TestPlaceOrder_ConcurrentPlacementsNeverOversell(t *testing.T) {
	const initialStock = 10
	const attempts = 25

	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: initialStock},
	)
	svc, _ := newServiceWith(store, nil)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), userID, []orderitem.NewOrderItem{
				{ProductID: 1, Quantity: 1},
			})
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			var insufficient *order.InsufficientStockError
			require.ErrorAs(t, err, &insufficient)
			rejected++
		}
	}

	assert.Equal(t, initialStock, succeeded)
	assert.Equal(t, attempts-initialStock, rejected)
	assert.Equal(t, 0, store.stockOf(t, 1))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.orders, initialStock)
	assert.Len(t, store.items, initialStock)
}

func TestPlaceOrder_DeadlockBecomesConcurrencyConflict(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 10},
	)
	svc, _ := newServiceWith(store, func(u *fakeUOW) {
		u.commitErr = &pgconn.PgError{Code: "40P01"}
	})

	placed, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 1},
	})
	assert.Nil(t, placed)
	assert.ErrorIs(t, err, order.ErrConcurrencyConflict)
	assert.Equal(t, 10, store.stockOf(t, 1))
}

func TestPlaceOrder_StorageFailureBecomesPersistenceError(t *testing.T) {
	boom := errors.New("connection reset")
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 10},
	)
	svc, _ := newServiceWith(store, func(u *fakeUOW) {
		u.bulkInsertErr = boom
	})

	placed, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 1},
	})
	assert.Nil(t, placed)

	var persistence *order.PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, store.stockOf(t, 1))
}

func TestPlaceOrder_FailedPlacementLeavesNoTrace(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 3},
	)
	svc, _ := newServiceWith(store, nil)

	// Fail twice, then succeed with the same payload.
	for i := 0; i < 2; i++ {
		_, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 404, Quantity: 1},
		})
		require.Error(t, err)
	}
	assert.Equal(t, 3, store.stockOf(t, 1))

	placed, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 2},
	})
	require.NoError(t, err)
	require.NotNil(t, placed)
	assert.Equal(t, 1, store.stockOf(t, 1))

	orders, err := svc.ListUserOrders(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, orders, 1, "failed attempts must not leave partial orders behind")
}

func TestListUserOrders_EmptyHistory(t *testing.T) {
	store := newFakeStore()
	svc, _ := newServiceWith(store, nil)

	orders, err := svc.ListUserOrders(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestListUserOrders_GroupsItemsByOrder(t *testing.T) {
	store := newFakeStore(
		product.Product{ID: 1, Name: "Sour Worms", PriceCents: 350, Stock: 50},
		product.Product{ID: 2, Name: "Fudge Block", PriceCents: 1200, Stock: 50},
	)
	svc, _ := newServiceWith(store, nil)

	first, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 2},
	})
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), 42, []orderitem.NewOrderItem{
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	// Another user's order must not leak into the listing.
	_, err = svc.PlaceOrder(context.Background(), 7, []orderitem.NewOrderItem{
		{ProductID: 1, Quantity: 1},
	})
	require.NoError(t, err)

	orders, err := svc.ListUserOrders(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Newest first.
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Len(t, orders[0].OrderItems, 1)
	assert.Len(t, orders[1].OrderItems, 2)
	assert.Equal(t, "Fudge Block", orders[0].OrderItems[0].ProductName)
}

func TestClassifyStorageErr(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := classifyStorageErr(&pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, order.ErrConcurrencyConflict, "code %s", code)
	}

	var persistence *order.PersistenceError

	err := classifyStorageErr(&pgconn.PgError{Code: "23505"})
	assert.ErrorAs(t, err, &persistence)

	plain := errors.New("broken pipe")
	err = classifyStorageErr(plain)
	require.ErrorAs(t, err, &persistence)
	assert.ErrorIs(t, err, plain)
}
