package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when an update targets a stale
	// match version.
	ErrVersionConflict = errors.New("match version conflict")
)
