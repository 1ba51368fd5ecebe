package diag

import (
	"errors"

	apperrors "github.com/Bigdaddy1990/pawkit/errors"
	"github.com/Bigdaddy1990/pawkit/resilience"
)

// Classify maps a resilience error onto an AppError suitable for an HTTP
// response, so embedding services can distinguish "circuit protecting the
// dependency" from "the operation itself failed". The breaker sentinels do
// not carry a name, so the caller supplies the dependency it was talking to.
func Classify(dependency string, err error) *apperrors.AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	var exhausted *resilience.RetryExhaustedError

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.CircuitOpen(dependency)
	case errors.Is(err, resilience.ErrTooManyCalls):
		return apperrors.ProbeLimit(dependency)
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.BulkheadFull(dependency)
	case errors.Is(err, resilience.ErrRateLimited):
		return apperrors.RateLimited()
	case errors.As(err, &exhausted):
		return apperrors.RetryExhausted(exhausted.Attempts, exhausted.LastErr)
	default:
		return apperrors.ServiceUnavailable(dependency).WithCause(err)
	}
}
