package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/security/password"
)

// Exit codes reported by the backoffice binary.
const (
	ExitOK              = 0
	ExitInternal        = 1
	ExitInvalidInput    = 2
	ExitNotFound        = 3
	ExitConflict        = 4
	ExitUnauthorized    = 5
	ExitTooManyAttempts = 6
	ExitUnavailable     = 7
)

// ResolveError maps err to an exit code and the message shown to the operator.
// Unknown errors are logged with their cause and reported generically.
func ResolveError(err error, log zerolog.Logger) (int, string) {
	if err == nil {
		return ExitOK, ""
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput, err.Error()
	case errors.Is(err, password.ErrTooLong):
		return ExitInvalidInput, fmt.Sprintf("%s: password must be at most %d bytes", ErrInvalidInput, password.MaxLength)
	case errors.Is(err, domain.ErrAlreadyExists):
		return ExitConflict, "already exists"
	case errors.Is(err, domain.ErrNotFound):
		return ExitNotFound, "not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return ExitUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return ExitTooManyAttempts, "too many attempts, try again later"
	case errors.Is(err, ErrDegraded):
		return ExitUnavailable, err.Error()
	}

	log.Error().Err(err).Msg("unhandled error")
	return ExitInternal, "internal error"
}
