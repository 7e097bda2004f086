package iuserrepo

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/user"
)

// PostgresRepository is an interface for the user postgres repository.
type PostgresRepository interface {
	Insert(ctx context.Context, u user.User) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Query(ctx context.Context, filter *user.QueryUsersModel) ([]user.User, error)
	Count(ctx context.Context) (int64, error)
}
