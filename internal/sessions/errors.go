package sessions

import (
	"errors"
	"net/http"
)

var (
	// ErrEmptyInput indicates blank description text.
	ErrEmptyInput = errors.New("description text is empty")
	// ErrClassifierUnavailable indicates the classifier failed; session state is unchanged.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	// ErrClosed indicates a step on a resolved or abandoned session.
	ErrClosed = errors.New("session is closed")
	// ErrInFlight indicates a classification is already running for the session.
	ErrInFlight = errors.New("classification already in progress")
	// ErrNotFound indicates no open session with the requested id.
	ErrNotFound = errors.New("session not found")
)

// MapHTTPStatus maps session errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrClosed), errors.Is(err, ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrClassifierUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
