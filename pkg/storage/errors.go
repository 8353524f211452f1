package storage

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrNotFound means no object is stored under the key.
	ErrNotFound = errors.New("object not found")
	// ErrEmptyKey rejects an empty key.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey rejects absolute keys, backslashes and ".." segments.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrUnknownProvider is returned by New for an unrecognized provider.
	ErrUnknownProvider = errors.New("unknown storage provider")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
