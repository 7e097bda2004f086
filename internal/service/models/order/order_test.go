package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseStatus("CREATED")
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, status)

	_, err = ParseStatus("SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("created")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPlacementErrors(t *testing.T) {
	t.Parallel()

	notFound := &ProductNotFoundError{ProductID: 42}
	assert.Contains(t, notFound.Error(), "42")

	insufficient := &InsufficientStockError{
		ProductID:   7,
		ProductName: "Nougat Bar",
		Requested:   5,
		Available:   2,
	}
	assert.Contains(t, insufficient.Error(), "Nougat Bar")
	assert.Contains(t, insufficient.Error(), "requested 5")
	assert.Contains(t, insufficient.Error(), "available 2")

	cause := errors.New("connection reset")
	persistence := &PersistenceError{Err: cause}
	assert.ErrorIs(t, persistence, cause)
	assert.Contains(t, persistence.Error(), "connection reset")
}
