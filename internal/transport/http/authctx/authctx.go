package authctx

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/authsvc"
)

type contextKey struct{}

// WithIdentity stores the authenticated identity in the request context.
func WithIdentity(ctx context.Context, identity *authsvc.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// Identity returns the authenticated identity, or nil on unauthenticated
// requests.
func Identity(ctx context.Context) *authsvc.Identity {
	identity, _ := ctx.Value(contextKey{}).(*authsvc.Identity)

	return identity
}
