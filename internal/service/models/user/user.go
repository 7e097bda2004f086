package user

import (
	"database/sql/driver"
	"errors"
	"time"
)

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

var (
	ErrInvalidRole = errors.New("invalid role")

	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case RoleAdmin.String():
		return RoleAdmin, nil
	case RoleUser.String():
		return RoleUser, nil
	default:
		return "", ErrInvalidRole
	}
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}
