package repository

import "errors"

var (
	// ErrNotFound is returned when a scoped statement matched no row. For
	// owner-scoped statements it also covers rows owned by someone else.
	ErrNotFound = errors.New("not found")

	ErrLimitReached = errors.New("monitor limit reached")
)
