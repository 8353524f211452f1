package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/pkg/handlers"
	"github.com/JaimeStill/fissure/pkg/routes"
	"github.com/JaimeStill/fissure/pkg/storage"
)

type archiveHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newArchiveHandler(store storage.System, logger *slog.Logger) *archiveHandler {
	return &archiveHandler{
		store:  store,
		logger: logger.With("handler", "archive"),
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download},
		},
	}
}

// archiveListing is the response of the archive list endpoint.
type archiveListing struct {
	Location string   `json:"location"`
	Keys     []string `json:"keys"`
}

func (h *archiveHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = dashboard.ArchivePrefix
	}

	keys, err := h.store.List(r.Context(), prefix)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, archiveListing{
		Location: h.store.Location(),
		Keys:     keys,
	})
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType(key))
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

func contentType(key string) string {
	for _, f := range dashboard.Formats {
		if path.Ext(key) == "."+f.Ext() {
			return f.ContentType()
		}
	}
	return "application/octet-stream"
}
