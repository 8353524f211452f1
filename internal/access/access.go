// Package access records the outcome of external credential checks in the
// audit log. Verifying credentials is the caller's concern.
package access

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/fissure/pkg/auditlog"
)

// Decision is the result of an external authorization check.
type Decision struct {
	Actor   string `json:"actor"`
	Granted bool   `json:"granted"`
	Role    string `json:"role,omitempty"`
	Details string `json:"details,omitempty"`
}

// Event converts the decision into its audit event.
func (d Decision) Event(at time.Time) auditlog.Event {
	kind := auditlog.KindAccessDenied
	if d.Granted {
		kind = auditlog.KindAccessGranted
	}
	payload := auditlog.AccessPayload{Role: strings.TrimSpace(d.Role), Details: d.Details}
	return auditlog.NewEvent(strings.TrimSpace(d.Actor), kind, payload.Map(), at)
}

// System records access decisions.
type System interface {
	Handler(maxBody int64) *Handler
	// Record appends the decision to the audit log. Audit log errors are
	// returned unchanged.
	Record(ctx context.Context, d Decision) (auditlog.Event, error)
}

type recorder struct {
	audit  auditlog.System
	logger *slog.Logger
	now    func() time.Time
}

// New creates an access System writing to audit.
func New(audit auditlog.System, logger *slog.Logger) System {
	return &recorder{
		audit:  audit,
		logger: logger.With("system", "access"),
		now:    time.Now,
	}
}

func (r *recorder) Handler(maxBody int64) *Handler {
	return NewHandler(r, r.logger, maxBody)
}

func (r *recorder) Record(ctx context.Context, d Decision) (auditlog.Event, error) {
	e := d.Event(r.now())

	if err := r.audit.Append(ctx, e); err != nil {
		r.logger.Warn("access decision not recorded",
			"audit_gap", true,
			"actor", e.Actor,
			"kind", e.Kind,
			"error", err,
		)
		return e, err
	}

	r.logger.Info("access recorded", "actor", e.Actor, "kind", e.Kind)
	return e, nil
}
