// Package domain defines domain-level errors for the coins feature.
package domain

import (
	"errors"
	"fmt"
)

// Errors returned by the market data gateway. Upper layers pick user-facing
// messages and HTTP statuses off this taxonomy; the gateway never retries on
// its own, so every one of these surfaces to the caller unchanged.
var (
	// ErrRateLimited indicates the provider rejected the request with HTTP 429.
	// The free public tier hits this often, so it must stay distinguishable
	// from a generic upstream failure.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrNotFound indicates the provider does not know the requested asset id.
	ErrNotFound = errors.New("asset not found")

	// ErrNetwork indicates the request never produced an HTTP response
	// (DNS failure, connection refused, timeout).
	ErrNetwork = errors.New("network failure")

	// ErrParse indicates the provider responded but the body could not be
	// decoded into the expected shape.
	ErrParse = errors.New("malformed provider response")
)

// StatusError is returned for non-2xx provider responses that are not 429 or
// 404. Check with errors.As.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider http %d", e.Status)
}
