package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := map[*Error]int{
		ErrInvalidEmailDomain: fiber.StatusBadRequest,
		ErrOTPExpired:         fiber.StatusBadRequest,
		ErrUserExists:         fiber.StatusConflict,
		ErrInvalidCredentials: fiber.StatusUnauthorized,
		ErrPendingApproval:    fiber.StatusForbidden,
		ErrDriverNotFound:     fiber.StatusNotFound,
		ErrRateLimited:        fiber.StatusTooManyRequests,
		ErrDelivery:           fiber.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, Status(err.Kind), err.Message)
	}
}

func TestAs_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", ErrUserExists)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, ErrUserExists, got)
	assert.True(t, errors.Is(wrapped, ErrUserExists))

	_, ok = As(errors.New("boom"))
	assert.False(t, ok)
}
