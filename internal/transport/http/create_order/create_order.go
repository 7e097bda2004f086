package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/order"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/orderitem"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/authctx"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, userID int64, items []orderitem.NewOrderItem) (*order.Order, error)
}

// itemInCreateOrderRequest represents a line in a create order request.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gte=1"`
}

// createOrderRequest represents a create order request. An empty item list is
// legal at decode time; the service rejects it before opening a transaction.
type createOrderRequest struct {
	Items []itemInCreateOrderRequest `json:"items" validate:"dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toModel() []orderitem.NewOrderItem {
	items := make([]orderitem.NewOrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = orderitem.NewOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return items
}

// errorResponse is the failure body for a rejected placement.
type errorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"productId,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// CreateOrder handles the order placement request for the authenticated user.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	identity := authctx.Identity(r.Context())
	if identity == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)

		return
	}

	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.PlaceOrder(r.Context(), identity.UserID, req.toModel())
	if err != nil {
		writePlacementError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}

// writePlacementError maps the placement error taxonomy to response codes.
// Failed placements left no state behind, so every non-500 here is safe to
// resubmit.
func writePlacementError(w http.ResponseWriter, err error) {
	var notFound *order.ProductNotFoundError
	var insufficient *order.InsufficientStockError

	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, errorResponse{Error: err.Error()})
	case errors.As(err, &notFound):
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, errorResponse{Error: err.Error(), ProductID: notFound.ProductID})
	case errors.As(err, &insufficient):
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, errorResponse{Error: err.Error(), ProductID: insufficient.ProductID})
	case errors.Is(err, order.ErrConcurrencyConflict):
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, errorResponse{Error: err.Error(), Retryable: true})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, errorResponse{Error: "internal error"})
		slog.Error("Error placing order", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, body errorResponse) {
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error sending error response for create order", "error", err)
	}
}
