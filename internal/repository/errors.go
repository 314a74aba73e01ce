// Package repository holds the complaint and user repositories, the storage
// interfaces their backends implement, and the sentinel errors both layers
// share. Handlers map these errors to HTTP statuses:
//
//	ErrValidation  -> 400
//	ErrNotFound    -> 404
//	ErrDuplicate   -> 409
//	ErrEmailExists -> 400 (registration)
package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every input problem; the wrapped message is safe
	// to show to the client.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the addressed record does not exist,
	// including ids the backend cannot parse.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned by stores on a unique-key violation and
	// matched by DuplicateComplaintError.
	ErrDuplicate = errors.New("duplicate")

	// ErrEmailExists is returned when registering an email already in use.
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DuplicateComplaintError reports a submission that collides with an
// existing complaint for the same bus, route, type and day. ExistingID is
// empty only when the colliding record vanished between the failed insert
// and the re-read.
type DuplicateComplaintError struct {
	ExistingID string
}

func (e *DuplicateComplaintError) Error() string {
	if e.ExistingID == "" {
		return "duplicate complaint"
	}
	return fmt.Sprintf("duplicate complaint (existing id %s)", e.ExistingID)
}

// Is makes errors.Is(err, ErrDuplicate) true for duplicate complaints.
func (e *DuplicateComplaintError) Is(target error) bool { return target == ErrDuplicate }

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
