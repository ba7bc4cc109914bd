package domain

import "errors"

// Error taxonomy for the pipeline. Callers classify failures with errors.Is
// against these sentinels; ErrRateLimited is the only retryable one.
var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrRetryExhausted     = errors.New("retries exhausted")
	ErrMalformedInput     = errors.New("malformed input")
)
