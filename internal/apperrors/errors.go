package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the assessment lifecycle. Handlers match with
// errors.Is and map each kind to an HTTP status.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrValidation          = errors.New("validation failed")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

func NotFound(resource, id string) error {
	return fmt.Errorf("%s %s: %w", resource, id, ErrNotFound)
}

func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// QuotaExceeded reports the max-attempts ceiling together with the current
// count so callers can surface both.
type QuotaError struct {
	Used    int
	Ceiling int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("attempts exhausted: %d of %d used: %s", e.Used, e.Ceiling, ErrQuotaExceeded)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConcurrencyConflict)...)
}
