package warmup

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrCacheRequired is returned when a Warmer is created without a cache
	ErrCacheRequired = errors.New("embedding cache is required")
)
