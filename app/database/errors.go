package database

import "errors"

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on unique-constraint violations (duplicate
	// name or URL).
	ErrConflict = errors.New("record already exists")
	// ErrImmutable is returned when mutating the Uncategorized category.
	ErrImmutable = errors.New("category is immutable")
)
