// Package errs defines the error kinds the API layer maps to HTTP statuses.
// Domain and storage code wraps one of the sentinels below; callers classify
// with errors.Is and never string-match messages.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAuth        = errors.New("unauthorized")
	ErrRateLimited = errors.New("rate limited")
	ErrStorage     = errors.New("storage error")
)

func Validationf(format string, args ...any) error {
	return errors.Wrap(ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return errors.Wrap(ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return errors.Wrap(ErrConflict, fmt.Sprintf(format, args...))
}

func Authf(format string, args ...any) error {
	return errors.Wrap(ErrAuth, fmt.Sprintf(format, args...))
}

func RateLimitedf(format string, args ...any) error {
	return errors.Wrap(ErrRateLimited, fmt.Sprintf(format, args...))
}

// Storagef keeps the underlying cause in the chain so it shows up in logs
// while the API layer still sees a 500-kind.
func Storagef(cause error, format string, args ...any) error {
	return errors.Wrapf(errors.WithMessage(ErrStorage, cause.Error()), format, args...)
}
