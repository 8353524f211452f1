package auditlog

import (
	"errors"
	"net/http"
)

var (
	// ErrWrite indicates an append could not be persisted.
	ErrWrite = errors.New("audit log write failed")
	// ErrCorrupt indicates the store content is not a well-formed event sequence.
	ErrCorrupt = errors.New("audit log corrupt")
	// ErrBusy indicates the store lock could not be acquired within the lock timeout.
	ErrBusy = errors.New("audit log busy")
)

// MapHTTPStatus maps audit log errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrBusy) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
