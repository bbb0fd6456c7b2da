package ai

import "errors"

// Provider error taxonomy. Callers branch with errors.Is; no retry is
// performed at this layer.
var (
	// ErrInvalidInput means the request was rejected before any provider
	// call (empty text).
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited means the provider signaled throttling (HTTP 429).
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrQuotaExhausted means the provider signaled billing or credit
	// exhaustion (HTTP 402).
	ErrQuotaExhausted = errors.New("provider quota exhausted")

	// ErrProviderUnavailable covers every other non-2xx status, network
	// failure, deadline expiry, or an open circuit breaker.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
