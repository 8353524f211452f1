package sessions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/fissure/pkg/handlers"
	"github.com/JaimeStill/fissure/pkg/routes"
)

// Handler provides HTTP endpoints for classification sessions.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

// StartRequest opens a session.
type StartRequest struct {
	Actor string `json:"actor"`
	Text  string `json:"text"`
}

// RefineRequest appends text to a session.
type RefineRequest struct {
	Text string `json:"text"`
}

// StepResponse reports a session after a classification step. Warning is
// set when the result could not be written to the audit log.
type StepResponse struct {
	Session   State   `json:"session"`
	Step      Step    `json:"step"`
	Threshold float64 `json:"threshold"`
	Warning   string  `json:"warning,omitempty"`
}

// OpenFailure is returned when a session was opened but its first
// classification failed.
type OpenFailure struct {
	Error   string `json:"error"`
	Session State  `json:"session"`
}

// NewHandler creates a Handler. maxBody bounds request bodies; zero disables the limit.
func NewHandler(sys System, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "sessions"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Start},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/refine", Handler: h.Refine},
			{Method: "POST", Pattern: "/{id}/retry", Handler: h.Retry},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Abandon},
		},
	}
}

// Start opens a session and runs its first classification.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[StartRequest](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	state, step, err := h.sys.Open(r.Context(), req.Actor, req.Text)
	if err != nil && errors.Is(err, ErrEmptyInput) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		// the session exists; the client may retry it
		status := MapHTTPStatus(err)
		h.logger.Warn("session opened without result", "status", status, "session", state.ID, "error", err)
		handlers.RespondJSON(w, status, OpenFailure{Error: err.Error(), Session: state})
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, h.response(state, step))
}

// Find returns a session's current state.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	state, err := h.sys.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}

// Refine appends text to a session and reclassifies it.
func (h *Handler) Refine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	req, err := handlers.DecodeJSON[RefineRequest](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	state, step, err := h.sys.Refine(r.Context(), id, req.Text)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.response(state, step))
}

// Retry reclassifies a session's current text.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	state, step, err := h.sys.Retry(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.response(state, step))
}

// Abandon closes a session without a result.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	state, err := h.sys.Abandon(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) response(state State, step Step) StepResponse {
	resp := StepResponse{
		Session:   state,
		Step:      step,
		Threshold: ConfidenceThreshold,
	}
	if step.AuditErr != nil {
		resp.Warning = "result not recorded in audit log: " + step.AuditErr.Error()
	}
	return resp
}
