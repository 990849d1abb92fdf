package domain

import "errors"

var (
	// ErrExtractionNotFound is returned when an extraction id is unknown to
	// both the cache and the durable store
	ErrExtractionNotFound = errors.New("extraction not found")
)
