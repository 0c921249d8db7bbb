package rate

import "errors"

var (
	// ErrRateLimited is returned when at least one rule in a Consume call would be exceeded.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable is returned when the counter backend cannot be reached.
	ErrStoreUnavailable = errors.New("counter store unavailable")
)
