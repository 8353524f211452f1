package access

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/handlers"
	"github.com/JaimeStill/fissure/pkg/routes"
)

// Handler provides the HTTP endpoint for recording access decisions.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "access"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for access endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/access",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Record},
		},
	}
}

// Record appends an access decision to the audit log.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	d, err := handlers.DecodeJSON[Decision](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	e, err := h.sys.Record(r.Context(), d)
	if err != nil {
		handlers.RespondError(w, h.logger, auditlog.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, e)
}
