package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/order"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/authctx"
)

type service interface {
	ListUserOrders(ctx context.Context, userID int64) ([]order.Order, error)
}

// ListMyOrders returns the authenticated user's orders, newest first.
func ListMyOrders(w http.ResponseWriter, r *http.Request, service service) {
	identity := authctx.Identity(r.Context())
	if identity == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)

		return
	}

	orders, err := service.ListUserOrders(r.Context(), identity.UserID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		slog.Error("Error getting orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
