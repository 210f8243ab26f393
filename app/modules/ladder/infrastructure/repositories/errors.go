package ladderdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates an insert collided with an existing primary key.
	ErrDuplicate = errors.New("duplicate key")
)
