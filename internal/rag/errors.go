package rag

import "errors"

var (
	// ErrBackendUnavailable indicates the vector index could not be reached.
	// Not retried here; retry policy belongs to the caller.
	ErrBackendUnavailable = errors.New("vector index unavailable")

	// ErrGeneration indicates the external language model call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrFallbackExhausted indicates the web fallback produced nothing usable:
	// the search provider failed, returned zero URLs, or every page fetch
	// failed. Callers must surface the original answer instead of failing.
	ErrFallbackExhausted = errors.New("web fallback exhausted")
)
