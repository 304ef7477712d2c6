package apperr

import (
	"errors"
	"net/http"
)

// Business rejections are returned to the caller as-is and never retried.
// ErrTransient marks storage faults that get one local retry before the
// operation is surfaced as failed.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientSeats = errors.New("insufficient seats")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDuplicatePending  = errors.New("duplicate pending application")
	ErrInvalidRoleSet    = errors.New("invalid role set")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTransient         = errors.New("transient storage fault")
	ErrBookingFailed     = errors.New("booking failed")
	ErrOperationFailed   = errors.New("operation failed")
)

// Retryable reports whether an error is worth one more attempt. Business
// rejections are final; everything else is treated as a transient fault,
// whether or not it is tagged ErrTransient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInsufficientSeats),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrDuplicatePending),
		errors.Is(err, ErrInvalidRoleSet),
		errors.Is(err, ErrInvalidInput):
		return false
	}
	return true
}

// HTTPStatus maps the error taxonomy to a response code. Unknown errors map
// to 500 so nothing is silently swallowed as a client fault.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientSeats):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicatePending):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRoleSet), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
