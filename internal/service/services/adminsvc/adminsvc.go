package adminsvc

import (
	"context"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iproductrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iuserrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/postgres"
	productrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/product/postgres"
	userrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/user/postgres"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/product"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/user"
)

// Overview is the admin dashboard aggregate.
type Overview struct {
	UserCount      int64             `json:"userCount"`
	ProductCount   int64             `json:"productCount"`
	LatestUsers    []user.User       `json:"latestUsers"`
	LatestProducts []product.Product `json:"latestProducts"`
}

// AdminService serves administrative read endpoints.
type AdminService struct {
	userRepo    iuserrepo.PostgresRepository
	productRepo iproductrepo.PostgresRepository
}

// option is a function that configures the AdminService.
type option func(*AdminService)

// MustNewAdminService creates a new AdminService.
func MustNewAdminService(opts ...option) *AdminService {
	s := &AdminService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.userRepo == nil || s.productRepo == nil {
		panic("adminsvc requires user and product repositories")
	}

	return s
}

// WithPostgresClient wires the repositories to the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *AdminService) {
		s.userRepo = userrepo.NewPostgresUserRepository(pgClient.Pool())
		s.productRepo = productrepo.NewPostgresProductRepository(pgClient.Pool())
	}
}

// WithRepositories sets the repositories directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(users iuserrepo.PostgresRepository, products iproductrepo.PostgresRepository) option {
	return func(s *AdminService) {
		s.userRepo = users
		s.productRepo = products
	}
}

// GetOverview returns counts plus the latest 5 users and 10 products.
func (s *AdminService) GetOverview(ctx context.Context) (*Overview, error) {
	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	productCount, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	latestUsers, err := s.userRepo.Query(ctx, &user.QueryUsersModel{Limit: 5})
	if err != nil {
		return nil, err
	}

	latestProducts, err := s.productRepo.Query(ctx, &product.QueryProductsModel{
		SortBy: product.SortNewest,
		Limit:  10,
	})
	if err != nil {
		return nil, err
	}

	if latestUsers == nil {
		latestUsers = []user.User{}
	}
	if latestProducts == nil {
		latestProducts = []product.Product{}
	}

	return &Overview{
		UserCount:      userCount,
		ProductCount:   productCount,
		LatestUsers:    latestUsers,
		LatestProducts: latestProducts,
	}, nil
}

// ListUsers returns users filtered by email substring, newest first.
func (s *AdminService) ListUsers(ctx context.Context, filter *user.QueryUsersModel) ([]user.User, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 20
	}

	users, err := s.userRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}

	return users, nil
}
