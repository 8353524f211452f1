package dashboard

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/storage"
)

var (
	ErrUnknownFormat = errors.New("unknown report format")
	ErrArchive       = errors.New("report archive failed")
)

// MapHTTPStatus maps dashboard and audit log errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, auditlog.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
