// Package api defines transport-level response types shared across features.
package api

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
