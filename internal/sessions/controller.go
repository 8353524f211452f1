// Package sessions drives confidence-gated classification sessions: an
// operator submits a description, refines it while the classifier is unsure,
// and a confident result is written to the audit log exactly once.
package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/fissure/internal/classifier"
	"github.com/JaimeStill/fissure/pkg/auditlog"
)

// ConfidenceThreshold is the minimum confidence, inclusive, that resolves a session.
const ConfidenceThreshold = 0.90

// Recorder persists audit events.
type Recorder interface {
	Append(ctx context.Context, e auditlog.Event) error
}

// Step is the outcome of one classification. AuditErr is set when the
// session resolved but its audit event could not be written; the result
// is still valid.
type Step struct {
	Result   classifier.Result `json:"result"`
	Status   Status            `json:"status"`
	AuditErr error             `json:"-"`
}

// Controller runs classification steps against a classifier and records
// resolved sessions. It holds no per-session state.
type Controller struct {
	classifier classifier.Classifier
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewController creates a Controller.
func NewController(c classifier.Classifier, recorder Recorder, logger *slog.Logger) *Controller {
	return &Controller{
		classifier: c,
		recorder:   recorder,
		logger:     logger.With("system", "sessions"),
		now:        time.Now,
	}
}

// Labels returns the classifier's label set.
func (c *Controller) Labels() classifier.LabelSet {
	return c.classifier.Labels()
}

// StartSession opens a session for initialText and classifies it. When the
// classifier fails the session is still returned, awaiting input, together
// with ErrClassifierUnavailable so the caller can retry.
func (c *Controller) StartSession(ctx context.Context, actor, initialText string) (*Session, Step, error) {
	text := strings.TrimSpace(initialText)
	if text == "" {
		return nil, Step{}, ErrEmptyInput
	}
	if strings.TrimSpace(actor) == "" {
		actor = auditlog.UnknownActor
	}

	s := newSession(actor, text, c.now())
	c.logger.Info("session started", "session", s.ID, "actor", actor)

	step, err := c.run(ctx, s, text, false)
	return s, step, err
}

// ClassifyStep classifies the session again. A nil increment retries the
// current text; otherwise the trimmed increment is appended, space-joined,
// and the extended text is classified. Session state changes only when the
// classifier succeeds.
func (c *Controller) ClassifyStep(ctx context.Context, s *Session, increment *string) (Step, error) {
	if increment == nil {
		return c.run(ctx, s, "", false)
	}

	text := strings.TrimSpace(*increment)
	if text == "" {
		return Step{Status: s.Status()}, ErrEmptyInput
	}
	return c.run(ctx, s, text, true)
}

// AbandonSession closes the session without a result. Abandoning an
// abandoned session is a no-op; abandoning a resolved one is ErrClosed.
func (c *Controller) AbandonSession(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusAbandoned:
		return nil
	case StatusResolved:
		return ErrClosed
	}

	s.status = StatusAbandoned
	s.updatedAt = c.now()
	c.logger.Info("session abandoned", "session", s.ID, "attempts", len(s.attempts))
	return nil
}

func (c *Controller) run(ctx context.Context, s *Session, increment string, extend bool) (Step, error) {
	if !s.inflight.TryAcquire(1) {
		return Step{Status: s.Status()}, ErrInFlight
	}
	defer s.inflight.Release(1)

	s.mu.Lock()
	status := s.status
	candidate := s.text()
	s.mu.Unlock()

	if status.Terminal() {
		return Step{Status: status}, ErrClosed
	}
	if extend {
		candidate += " " + increment
	}

	result, err := c.classifier.Classify(ctx, candidate)
	if err != nil {
		c.logger.Warn("classification failed", "session", s.ID, "error", err)
		return Step{Status: status}, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	now := c.now()

	s.mu.Lock()
	if s.status.Terminal() {
		status = s.status
		s.mu.Unlock()
		return Step{Status: status}, ErrClosed
	}
	if extend {
		s.increments = append(s.increments, increment)
	}
	s.attempts = append(s.attempts, Attempt{Increment: increment, Result: result, At: now})
	if result.Confidence() >= ConfidenceThreshold {
		s.status = StatusResolved
	} else {
		s.status = StatusNeedsRefinement
	}
	s.updatedAt = now
	status = s.status
	attempts := len(s.attempts)
	s.mu.Unlock()

	step := Step{Result: result, Status: status}

	c.logger.Info("classified",
		"session", s.ID,
		"attempt", attempts,
		"label", result.Label(),
		"confidence", result.Confidence(),
		"status", status,
	)

	if status == StatusResolved {
		step.AuditErr = c.record(ctx, s, candidate, result, now)
	}

	return step, nil
}

// record writes the classification_performed event for a resolved session.
// Failures are logged as audit gaps and returned for the caller to surface.
func (c *Controller) record(ctx context.Context, s *Session, text string, result classifier.Result, at time.Time) error {
	payload := auditlog.ClassificationPayload{
		Description: text,
		ResultLabel: result.Label(),
		Confidence:  auditlog.FormatConfidence(result.Confidence()),
	}
	event := auditlog.NewEvent(s.Actor, auditlog.KindClassificationPerformed, payload.Map(), at)

	if err := c.recorder.Append(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Warn("classification not recorded",
			"audit_gap", true,
			"session", s.ID,
			"actor", s.Actor,
			"label", payload.ResultLabel,
			"error", err,
		)
		return err
	}
	return nil
}
