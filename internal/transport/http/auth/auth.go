package authhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/user"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/authsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/authctx"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	RegisterAdmin(ctx context.Context, email, password, inviteCode string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
}

// credentialsRequest carries register and login bodies.
type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// Validate validates the credentials request.
func (r *credentialsRequest) Validate() error {
	return validator.New().Struct(r)
}

// tokenResponse is the login response body.
type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *user.User `json:"user"`
}

// Register handles user self-registration.
func Register(w http.ResponseWriter, r *http.Request, service service) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	created, err := service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for register", "error", err)
	}
}

// RegisterAdmin creates an ADMIN account gated by the X-Admin-Invite header.
func RegisterAdmin(w http.ResponseWriter, r *http.Request, service service) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	created, err := service.RegisterAdmin(r.Context(), req.Email, req.Password, r.Header.Get("X-Admin-Invite"))
	if err != nil {
		writeAuthError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for register admin", "error", err)
	}
}

// Login verifies credentials and returns a bearer token with the user.
func Login(w http.ResponseWriter, r *http.Request, service service) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, u, err := service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        u,
	}); err != nil {
		slog.Error("Error sending response for login", "error", err)
	}
}

// Me returns the authenticated identity.
func Me(w http.ResponseWriter, r *http.Request) {
	identity := authctx.Identity(r.Context())
	if identity == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"id":    identity.UserID,
		"email": identity.Email,
		"role":  identity.Role,
	}); err != nil {
		slog.Error("Error sending response for me", "error", err)
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (*credentialsRequest, bool) {
	req := credentialsRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding credentials request", "error", err)

		return nil, false
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating credentials request", "error", err)

		return nil, false
	}

	return &req, true
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrEmailTaken),
		errors.Is(err, authsvc.ErrInvalidEmail),
		errors.Is(err, authsvc.ErrWeakPassword),
		errors.Is(err, authsvc.ErrPasswordTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInvalidInviteCode):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		slog.Error("Auth error", "error", err)
	}
}
