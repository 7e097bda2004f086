package producthandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) (*product.Product, error)
	UpdateProduct(ctx context.Context, id int64, upd *product.UpdateProductModel) (*product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// queryProductsRequest represents catalog filter query parameters.
type queryProductsRequest struct {
	Search        string `schema:"q,omitempty"`
	Category      string `schema:"category,omitempty"`
	MaxPriceCents int64  `schema:"maxPriceCents,omitempty"`
	VeganOnly     bool   `schema:"veganOnly,omitempty"`
	GlutenFree    bool   `schema:"glutenFree,omitempty"`
	SortBy        string `schema:"sortBy,omitempty"`
	Limit         int    `schema:"limit,omitempty"`
	Offset        int    `schema:"offset,omitempty"`
}

func (q *queryProductsRequest) ToModel() *product.QueryProductsModel {
	return &product.QueryProductsModel{
		Search:        q.Search,
		Category:      q.Category,
		MaxPriceCents: q.MaxPriceCents,
		VeganOnly:     q.VeganOnly,
		GlutenFree:    q.GlutenFree,
		SortBy:        q.SortBy,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
}

// createProductRequest represents an admin product creation body.
type createProductRequest struct {
	Name         string `json:"name"         validate:"required,max=120"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"priceCents"   validate:"gt=0"`
	Stock        int    `json:"stock"        validate:"gte=0"`
	ImageUrl     string `json:"imageUrl"`
	Category     string `json:"category"`
	IsVegan      bool   `json:"isVegan"`
	IsGlutenFree bool   `json:"isGlutenFree"`
}

// Validate validates the create product request.
func (r *createProductRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createProductRequest) toModel() product.Product {
	category := r.Category
	if category == "" {
		category = "General"
	}

	return product.Product{
		Name:         r.Name,
		Description:  r.Description,
		PriceCents:   r.PriceCents,
		Stock:        r.Stock,
		ImageUrl:     r.ImageUrl,
		Category:     category,
		IsVegan:      r.IsVegan,
		IsGlutenFree: r.IsGlutenFree,
	}
}

// ListProducts handles GET /products with search, filter and sort parameters.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding product query", "error", err)

		return
	}

	products, err := service.ListProducts(r.Context(), query.ToModel())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		slog.Error("Error listing products", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		slog.Error("Error sending response for list products", "error", err)
	}
}

// GetProduct handles GET /products/{id}.
func GetProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := service.GetProduct(r.Context(), id)
	if err != nil {
		writeProductError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("Error sending response for get product", "error", err)
	}
}

// CreateProduct handles POST /products (admin only).
func CreateProduct(w http.ResponseWriter, r *http.Request, service service) {
	req := createProductRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding create product request", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating create product request", "error", err)

		return
	}

	created, err := service.CreateProduct(r.Context(), req.toModel())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		slog.Error("Error creating product", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create product", "error", err)
	}
}

// UpdateProduct handles PUT /products/{id} (admin only, partial update).
func UpdateProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	upd := product.UpdateProductModel{}
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding update product request", "error", err)

		return
	}

	updated, err := service.UpdateProduct(r.Context(), id, &upd)
	if err != nil {
		writeProductError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response for update product", "error", err)
	}
}

// DeleteProduct handles DELETE /products/{id} (admin only).
func DeleteProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := service.DeleteProduct(r.Context(), id); err != nil {
		writeProductError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid product id", http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

func writeProductError(w http.ResponseWriter, err error) {
	if errors.Is(err, product.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
	slog.Error("Product error", "error", err)
}
