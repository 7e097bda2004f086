package order

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/orderitem"
)

// Status is the lifecycle state of an order. Placement only ever produces
// StatusCreated; later transitions happen outside this service.
type Status string

const (
	StatusCreated Status = "CREATED"
)

var ErrInvalidStatus = errors.New("invalid order status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusCreated.String():
		return StatusCreated, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Order represents a placed order together with its items. An order is never
// persisted without at least one item; both are committed atomically.
type Order struct {
	ID         int64                 `json:"id"`
	UserID     int64                 `json:"userId"`
	Status     Status                `json:"status"`
	CreatedAt  time.Time             `json:"createdAt"`
	OrderItems []orderitem.OrderItem `json:"items"`
}
