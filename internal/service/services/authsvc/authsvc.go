package authsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/interfaces/iuserrepo"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/postgres"
	userrepo "github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/repositories/user/postgres"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/user"
	"github.com/spf13/viper"
)

var (
	// ErrInvalidCredentials is returned when login credentials are wrong or
	// the account is deactivated.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidInviteCode is returned when the admin invite code is missing or wrong.
	ErrInvalidInviteCode = errors.New("invalid admin invite code")
)

// Identity is the authenticated caller resolved from a bearer token. The
// rest of the system trusts it as given.
type Identity struct {
	UserID int64
	Email  string
	Role   user.Role
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo        iuserrepo.PostgresRepository
	hasher          *PasswordHasher
	jwt             *JWTManager
	adminInviteCode string
}

// option is a function that configures the AuthService.
type option func(*AuthService)

// MustNewAuthService creates a new AuthService configured from viper
// (auth.jwt_secret, auth.token_ttl_minutes, auth.issuer, auth.admin_invite_code).
func MustNewAuthService(opts ...option) *AuthService {
	s := &AuthService{
		hasher:          NewPasswordHasher(),
		adminInviteCode: viper.GetString("auth.admin_invite_code"),
	}

	secret := viper.GetString("auth.jwt_secret")
	if secret == "" {
		panic("auth.jwt_secret is not configured")
	}

	ttl := viper.GetInt("auth.token_ttl_minutes")
	if ttl == 0 {
		ttl = 120
	}

	s.jwt = NewJWTManager(JWTConfig{
		SecretKey:     secret,
		TokenDuration: time.Duration(ttl) * time.Minute,
		Issuer:        viper.GetString("auth.issuer"),
	})

	for _, opt := range opts {
		opt(s)
	}

	if s.userRepo == nil {
		panic("authsvc requires a user repository")
	}

	return s
}

// WithPostgresClient wires the user repository to the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *AuthService) {
		s.userRepo = userrepo.NewPostgresUserRepository(pgClient.Pool())
	}
}

// WithUserRepository sets the user repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserRepository(repo iuserrepo.PostgresRepository) option {
	return func(s *AuthService) {
		s.userRepo = repo
	}
}

// Register creates a new active USER account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*user.User, error) {
	return s.register(ctx, email, password, user.RoleUser)
}

// RegisterAdmin creates an ADMIN account when the invite code matches the
// configured one. Registration is rejected when no code is configured.
func (s *AuthService) RegisterAdmin(ctx context.Context, email, password, inviteCode string) (*user.User, error) {
	if s.adminInviteCode == "" || inviteCode != s.adminInviteCode {
		return nil, ErrInvalidInviteCode
	}

	return s.register(ctx, email, password, user.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, email, password string, role user.Role) (*user.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Insert(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.IsActive || !s.hasher.Verify(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(u.ID, u.Email, u.Role.String())
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, u, nil
}

// ResolveIdentity validates a bearer token and resolves it to a live account.
// Deactivated or deleted users are rejected even when the token is valid.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}, nil
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SeedAdmin creates the default admin account when it does not exist yet.
// Credentials come from auth.admin_email / auth.admin_password with the
// original defaults as fallback.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	email := viper.GetString("auth.admin_email")
	if email == "" {
		email = "admin@mail.com"
	}
	password := viper.GetString("auth.admin_password")
	if password == "" {
		password = "admin123"
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("failed to check for seed admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	if _, err := s.userRepo.Insert(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	slog.Info("Seed admin created", "email", email)

	return nil
}
