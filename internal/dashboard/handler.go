package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/fissure/pkg/handlers"
	"github.com/JaimeStill/fissure/pkg/pagination"
	"github.com/JaimeStill/fissure/pkg/routes"
)

// Handler provides the admin dashboard HTTP endpoints.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	defaultFormat Format
}

// ArchiveRequest selects the formats to archive; empty means all.
type ArchiveRequest struct {
	Formats []Format `json:"formats"`
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger, pageCfg pagination.Config, defaultFormat Format) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "dashboard"),
		pagination:    pageCfg,
		defaultFormat: defaultFormat,
	}
}

// Routes returns the route group definition for dashboard endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/dashboard",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/snapshot", Handler: h.Snapshot},
			{Method: "GET", Pattern: "/report", Handler: h.Report},
			{Method: "POST", Pattern: "/report/archive", Handler: h.Archive},
			{Method: "GET", Pattern: "/accesses", Handler: h.Accesses},
			{Method: "GET", Pattern: "/classifications", Handler: h.Classifications},
		},
	}
}

// Snapshot returns the aggregate statistics.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sys.Snapshot(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, snap)
}

// Report renders the report in the format named by the format query parameter.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	f := h.defaultFormat
	if name := r.URL.Query().Get("format"); name != "" {
		var err error
		if f, err = ParseFormat(name); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	data, err := h.sys.Export(r.Context(), f)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Archive renders and uploads the report to archive storage.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if r.ContentLength != 0 {
		decoded, err := handlers.DecodeJSON[ArchiveRequest](w, r, 0)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		req = decoded
	}

	formats := make([]Format, 0, len(req.Formats))
	for _, name := range req.Formats {
		f, err := ParseFormat(string(name))
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		formats = append(formats, f)
	}

	archived, err := h.sys.Archive(r.Context(), formats...)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, archived)
}

// Accesses lists recent access events, newest first.
func (h *Handler) Accesses(w http.ResponseWriter, r *http.Request) {
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	page, err := h.sys.Accesses(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, page)
}

// Classifications lists recent classification events, newest first.
func (h *Handler) Classifications(w http.ResponseWriter, r *http.Request) {
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	page, err := h.sys.Classifications(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, page)
}
