package errors

import "errors"

var (
	ErrAlreadyExists          = errors.New("already exists")
	ErrNotFound               = errors.New("not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrUnavailable            = errors.New("unavailable")
	ErrInsufficientPayment    = errors.New("insufficient payment")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	// ErrConflict reports a lost optimistic update; use cases retry on it.
	ErrConflict = errors.New("concurrent modification")
)

// Kind returns the taxonomy name of err, or an empty string for unknown errors.
func Kind(err error) string {
	for _, known := range []error{
		ErrNotFound,
		ErrInvalidTransition,
		ErrUnavailable,
		ErrInsufficientPayment,
		ErrAuthenticationRequired,
		ErrForbidden,
		ErrInvalidInput,
		ErrAlreadyExists,
		ErrInvalidCredentials,
		ErrConflict,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ""
}
