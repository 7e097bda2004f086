package catalogsvc

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iproductrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/postgres"
	productrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/product/postgres"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
)

// CatalogService serves catalog reads and admin-side product writes.
//
// Writes here never touch stock concurrently with placements in a way that
// can break the stock invariant: admin stock updates are full row writes
// that go through the same row as the placement lock, and the schema CHECK
// rejects negatives.
type CatalogService struct {
	productRepo iproductrepo.PostgresRepository
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.productRepo == nil {
		panic("catalogsvc requires a product repository")
	}

	return s
}

// WithPostgresClient wires the product repository to the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CatalogService) {
		s.productRepo = productrepo.NewPostgresProductRepository(pgClient.Pool())
	}
}

// WithProductRepository sets the product repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.PostgresRepository) option {
	return func(s *CatalogService) {
		s.productRepo = repo
	}
}

// ListProducts returns catalog items matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	products, err := s.productRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []product.Product{}
	}

	return products, nil
}

// GetProduct returns a single product or product.ErrNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// CreateProduct adds a catalog item.
func (s *CatalogService) CreateProduct(ctx context.Context, p product.Product) (*product.Product, error) {
	return s.productRepo.Insert(ctx, p)
}

// UpdateProduct applies a partial update.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, upd *product.UpdateProductModel) (*product.Product, error) {
	return s.productRepo.Update(ctx, id, upd)
}

// DeleteProduct removes a catalog item.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}
