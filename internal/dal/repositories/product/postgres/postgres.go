package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id           int64     `db:"id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	PriceCents   int64     `db:"price_cents"`
	Stock        int       `db:"stock"`
	ImageUrl     string    `db:"image_url"`
	Category     string    `db:"category"`
	IsVegan      bool      `db:"is_vegan"`
	IsGlutenFree bool      `db:"is_gluten_free"`
	CreatedAt    time.Time `db:"created_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() *product.Product {
	return &product.Product{
		ID:           p.Id,
		Name:         p.Name,
		Description:  p.Description,
		PriceCents:   p.PriceCents,
		Stock:        p.Stock,
		ImageUrl:     p.ImageUrl,
		Category:     p.Category,
		IsVegan:      p.IsVegan,
		IsGlutenFree: p.IsGlutenFree,
		CreatedAt:    p.CreatedAt,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var productColumns = []string{
	"id",
	"name",
	"description",
	"price_cents",
	"stock",
	"image_url",
	"category",
	"is_vegan",
	"is_gluten_free",
	"created_at",
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var dal ProductDal
	err := row.Scan(
		&dal.Id,
		&dal.Name,
		&dal.Description,
		&dal.PriceCents,
		&dal.Stock,
		&dal.ImageUrl,
		&dal.Category,
		&dal.IsVegan,
		&dal.IsGlutenFree,
		&dal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel(), nil
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	query := r.sb.Select(productColumns...).From("products")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"description": like},
		})
	}

	if filter.Category != "" {
		query = query.Where(sq.Eq{"category": filter.Category})
	}

	if filter.MaxPriceCents > 0 {
		query = query.Where(sq.LtOrEq{"price_cents": filter.MaxPriceCents})
	}

	if filter.VeganOnly {
		query = query.Where(sq.Eq{"is_vegan": true})
	}

	if filter.GlutenFree {
		query = query.Where(sq.Eq{"is_gluten_free": true})
	}

	switch filter.SortBy {
	case product.SortPriceAsc:
		query = query.OrderBy("price_cents ASC")
	case product.SortPriceDesc:
		query = query.OrderBy("price_cents DESC")
	case product.SortNameAsc:
		query = query.OrderBy("name ASC")
	case product.SortNameDesc:
		query = query.OrderBy("name DESC")
	default:
		query = query.OrderBy("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByID retrieves a product by id.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	sql, args, err := r.sb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanProduct(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	return model, nil
}

// GetForUpdate retrieves a product by id with a row-level exclusive lock.
// Blocks until any other transaction holding the same row lock resolves, or
// the session lock_timeout fires. Must run inside a transaction.
func (r *PostgresProductRepository) GetForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	sql, args, err := r.sb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanProduct(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("failed to lock product %d: %w", id, err)
	}

	return model, nil
}

// DecrementStock subtracts quantity from a product's stock. The caller must
// hold the row lock from GetForUpdate and have verified stock beforehand; the
// schema CHECK (stock >= 0) is only a backstop.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	sql, args, err := r.sb.Update("products").
		Set("stock", sq.Expr("stock - ?", quantity)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return product.ErrNotFound
	}

	return nil
}

// Insert creates a new product and returns it with the generated id.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) (*product.Product, error) {
	sql, args, err := r.sb.Insert("products").
		Columns(
			"name",
			"description",
			"price_cents",
			"stock",
			"image_url",
			"category",
			"is_vegan",
			"is_gluten_free",
		).
		Values(
			p.Name,
			p.Description,
			p.PriceCents,
			p.Stock,
			p.ImageUrl,
			p.Category,
			p.IsVegan,
			p.IsGlutenFree,
		).
		Suffix("RETURNING " + selectList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanProduct(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return model, nil
}

// Update applies a partial update and returns the updated product.
func (r *PostgresProductRepository) Update(
	ctx context.Context,
	id int64,
	upd *product.UpdateProductModel,
) (*product.Product, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}

	query := r.sb.Update("products").Where(sq.Eq{"id": id})

	if upd.Name != nil {
		query = query.Set("name", *upd.Name)
	}
	if upd.Description != nil {
		query = query.Set("description", *upd.Description)
	}
	if upd.PriceCents != nil {
		query = query.Set("price_cents", *upd.PriceCents)
	}
	if upd.Stock != nil {
		query = query.Set("stock", *upd.Stock)
	}
	if upd.ImageUrl != nil {
		query = query.Set("image_url", *upd.ImageUrl)
	}
	if upd.Category != nil {
		query = query.Set("category", *upd.Category)
	}
	if upd.IsVegan != nil {
		query = query.Set("is_vegan", *upd.IsVegan)
	}
	if upd.IsGlutenFree != nil {
		query = query.Set("is_gluten_free", *upd.IsGlutenFree)
	}

	sql, args, err := query.Suffix("RETURNING " + selectList()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanProduct(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	return model, nil
}

// Delete removes a product.
func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}

	return nil
}

// Count returns the total number of products.
func (r *PostgresProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

func selectList() string {
	list := productColumns[0]
	for _, c := range productColumns[1:] {
		list += ", " + c
	}

	return list
}
