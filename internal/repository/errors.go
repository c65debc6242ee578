package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrInsufficientCapacity means a reserve asked for more than the
	// facility currently has available.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrUnavailable wraps persistence-layer failures (connectivity,
	// timeouts). The operation is safe to retry: the transactional
	// discipline guarantees no partial write happened.
	ErrUnavailable = errors.New("storage unavailable")
)
