package adminhandlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/user"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/adminsvc"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	GetOverview(ctx context.Context) (*adminsvc.Overview, error)
	ListUsers(ctx context.Context, filter *user.QueryUsersModel) ([]user.User, error)
}

// queryUsersRequest represents admin user listing query parameters.
type queryUsersRequest struct {
	Q      string `schema:"q,omitempty"`
	Limit  int    `schema:"limit,omitempty"`
	Offset int    `schema:"offset,omitempty"`
}

func (q *queryUsersRequest) ToModel() *user.QueryUsersModel {
	return &user.QueryUsersModel{
		EmailContains: q.Q,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
}

// Overview handles GET /admin/overview.
func Overview(w http.ResponseWriter, r *http.Request, service service) {
	overview, err := service.GetOverview(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		slog.Error("Error getting admin overview", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(overview); err != nil {
		slog.Error("Error sending response for admin overview", "error", err)
	}
}

// ListUsers handles GET /admin/users.
func ListUsers(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryUsersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding admin users query", "error", err)

		return
	}

	users, err := service.ListUsers(r.Context(), query.ToModel())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		slog.Error("Error listing users", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(users); err != nil {
		slog.Error("Error sending response for admin users", "error", err)
	}
}
