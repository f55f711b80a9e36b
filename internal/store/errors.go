package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when an insert violates a unique constraint.
// Concurrent registrations racing on the same username are resolved by the
// database's unique index, not by application-level locking, so this can
// surface even after an explicit existence check passed.
var ErrAlreadyExists = errors.New("already exists")

const pqUniqueViolation = "23505"

func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrAlreadyExists
	}
	return err
}
