package ladderdomain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the ladder module surfaces wraps exactly one of these.
var (
	// ErrNotFound is returned when a ladder, match or player is absent.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a ladder name is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrForbidden is returned when the caller may not perform an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for malformed requests.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a concurrent mutation was detected.
	ErrConflict = errors.New("conflict")
)

var (
	// ErrLadderNotFound is returned when the named ladder does not exist.
	ErrLadderNotFound = fmt.Errorf("ladder %w", ErrNotFound)

	// ErrMatchNotFound is returned when a match sequence does not exist or is already removed.
	ErrMatchNotFound = fmt.Errorf("match %w", ErrNotFound)

	// ErrPlayerNotFound is returned when a player has no matches on the ladder.
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)

	// ErrLadderExists is returned when creating a ladder whose name is taken.
	ErrLadderExists = fmt.Errorf("ladder %w", ErrAlreadyExists)

	// ErrUnauthenticated is returned when an operation needs an identity and none was verified.
	ErrUnauthenticated = fmt.Errorf("identity required: %w", ErrForbidden)

	// ErrNotOwner is returned when the verified identity does not own the ladder.
	ErrNotOwner = fmt.Errorf("not the ladder owner: %w", ErrForbidden)
)

// InvalidInputError reports which field of a request was rejected.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid builds an InvalidInputError.
func Invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsDomainError reports whether err belongs to the taxonomy, as opposed to an
// infrastructure failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConflict)
}
