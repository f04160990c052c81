package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	err := Validationf("weight must be > 0, got %v", -1)
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "weight must be > 0")

	err = NotFoundf("zone %q not found", "MARS")
	require.ErrorIs(t, err, ErrNotFound)

	err = Conflictf("zone already exists")
	require.ErrorIs(t, err, ErrConflict)

	err = Authf("missing bearer token")
	require.ErrorIs(t, err, ErrAuth)

	err = RateLimitedf("too many login attempts")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestStoragefKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storagef(cause, "increment counter")
	require.ErrorIs(t, err, ErrStorage)
	require.Contains(t, err.Error(), "connection refused")
	require.Contains(t, err.Error(), "increment counter")
}

func TestWrappedKindsSurvive(t *testing.T) {
	err := errors.Wrap(NotFoundf("order %s", "transdom_order1_20260101"), "get order")
	require.ErrorIs(t, err, ErrNotFound)
}
