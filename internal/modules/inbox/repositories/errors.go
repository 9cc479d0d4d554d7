package repositories

import "errors"

var (
	// ErrNotFound is returned when a conversation or note is absent from the store
	ErrNotFound = errors.New("not found")
	// ErrNotImplemented is returned by placeholder backends
	ErrNotImplemented = errors.New("not implemented")
)
