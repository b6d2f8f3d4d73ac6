package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// ValidationError reports a violated booking rule.  Reason is safe to
// show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError reports that the booking changed concurrently and the
// operation should be retried against fresh state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ErrForbidden is returned when the actor may not touch the booking.
var ErrForbidden = repository.ErrForbidden

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// lookup translates repository.ErrNotFound into a NotFoundError for the
// named resource and wraps anything else.
func lookup(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

// write translates repository.ErrConflict into a ConflictError.
func write(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrConflict) {
		return &ConflictError{Reason: "booking was modified concurrently, retry the request"}
	}
	return fmt.Errorf("%s: %w", what, err)
}
