// Package clients provides the HTTP client shared by provider adapters.
package clients

import (
	"errors"
	"fmt"
)

// Client errors are infrastructure failures. The acl package maps them to domain errors.
var (
	// ErrCircuitOpen is returned when the provider's circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error after all attempts failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError is a retryable HTTP status that persisted through every attempt.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}
