package catalogsvc

import (
	"context"
	"testing"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductRepo struct {
	gotFilter   *product.QueryProductsModel
	queryResult []product.Product
	err         error
}

func (r *stubProductRepo) Query(_ context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	r.gotFilter = filter

	return r.queryResult, r.err
}

func (r *stubProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	for i := range r.queryResult {
		if r.queryResult[i].ID == id {
			return &r.queryResult[i], nil
		}
	}

	return nil, product.ErrNotFound
}

func (r *stubProductRepo) GetForUpdate(_ context.Context, _ int64) (*product.Product, error) {
	panic("not used by the catalog")
}

func (r *stubProductRepo) DecrementStock(_ context.Context, _ int64, _ int) error {
	panic("not used by the catalog")
}

func (r *stubProductRepo) Insert(_ context.Context, p product.Product) (*product.Product, error) {
	p.ID = int64(len(r.queryResult) + 1)
	r.queryResult = append(r.queryResult, p)

	return &p, nil
}

func (r *stubProductRepo) Update(_ context.Context, id int64, upd *product.UpdateProductModel) (*product.Product, error) {
	p, err := r.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if upd.PriceCents != nil {
		p.PriceCents = *upd.PriceCents
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}

	return p, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id int64) error {
	if _, err := r.GetByID(context.Background(), id); err != nil {
		return err
	}

	return nil
}

func (r *stubProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.queryResult)), nil
}

func TestListProducts_NeverReturnsNil(t *testing.T) {
	repo := &stubProductRepo{}
	svc := MustNewCatalogService(WithProductRepository(repo))

	products, err := svc.ListProducts(context.Background(), &product.QueryProductsModel{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListProducts_PassesFilterThrough(t *testing.T) {
	repo := &stubProductRepo{queryResult: []product.Product{{ID: 1, Name: "Sour Worms"}}}
	svc := MustNewCatalogService(WithProductRepository(repo))

	filter := &product.QueryProductsModel{Search: "sour", SortBy: product.SortPriceAsc, Limit: 5}
	products, err := svc.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Same(t, filter, repo.gotFilter)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := MustNewCatalogService(WithProductRepository(&stubProductRepo{}))

	_, err := svc.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestCreateAndUpdateProduct(t *testing.T) {
	repo := &stubProductRepo{}
	svc := MustNewCatalogService(WithProductRepository(repo))
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, product.Product{Name: "Nougat Bar", PriceCents: 499, Stock: 10})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	newPrice := int64(650)
	updated, err := svc.UpdateProduct(ctx, created.ID, &product.UpdateProductModel{PriceCents: &newPrice})
	require.NoError(t, err)
	assert.EqualValues(t, 650, updated.PriceCents)
	assert.Equal(t, "Nougat Bar", updated.Name)
}
