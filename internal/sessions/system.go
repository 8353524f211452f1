package sessions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/fissure/internal/classifier"
	"github.com/JaimeStill/fissure/pkg/lifecycle"
)

// System exposes sessions addressed by id, for the HTTP surface.
type System interface {
	Handler(maxBody int64) *Handler
	Start(lc *lifecycle.Coordinator) error

	Open(ctx context.Context, actor, text string) (State, Step, error)
	Get(id uuid.UUID) (State, error)
	Refine(ctx context.Context, id uuid.UUID, text string) (State, Step, error)
	Retry(ctx context.Context, id uuid.UUID) (State, Step, error)
	Abandon(id uuid.UUID) (State, error)
	// Sweep abandons and drops every session idle since before cutoff.
	Sweep(cutoff time.Time) int
	Labels() classifier.LabelSet
}

type manager struct {
	controller *Controller
	registry   *Registry
	cfg        Config
	logger     *slog.Logger
}

// New creates a session System over controller with a fresh registry.
func New(controller *Controller, cfg Config, logger *slog.Logger) System {
	return &manager{
		controller: controller,
		registry:   NewRegistry(),
		cfg:        cfg,
		logger:     logger.With("system", "sessions"),
	}
}

func (m *manager) Handler(maxBody int64) *Handler {
	return NewHandler(m, m.logger, maxBody)
}

func (m *manager) Labels() classifier.LabelSet {
	return m.controller.Labels()
}

// Start schedules the idle-session janitor.
func (m *manager) Start(lc *lifecycle.Coordinator) error {
	idle := m.cfg.IdleTimeoutDuration()
	lc.Every(m.cfg.SweepIntervalDuration(), func(ctx context.Context) {
		if n := m.Sweep(time.Now().Add(-idle)); n > 0 {
			m.logger.Info("idle sessions swept", "count", n, "open", m.registry.Len())
		}
	})
	return nil
}

func (m *manager) Open(ctx context.Context, actor, text string) (State, Step, error) {
	s, step, err := m.controller.StartSession(ctx, actor, text)
	if s == nil {
		return State{}, step, err
	}
	m.registry.Add(s)
	return s.Snapshot(), step, err
}

func (m *manager) Get(id uuid.UUID) (State, error) {
	s, err := m.registry.Get(id)
	if err != nil {
		return State{}, err
	}
	return s.Snapshot(), nil
}

func (m *manager) Refine(ctx context.Context, id uuid.UUID, text string) (State, Step, error) {
	return m.step(ctx, id, &text)
}

func (m *manager) Retry(ctx context.Context, id uuid.UUID) (State, Step, error) {
	return m.step(ctx, id, nil)
}

func (m *manager) step(ctx context.Context, id uuid.UUID, increment *string) (State, Step, error) {
	s, err := m.registry.Get(id)
	if err != nil {
		return State{}, Step{}, err
	}
	step, err := m.controller.ClassifyStep(ctx, s, increment)
	return s.Snapshot(), step, err
}

func (m *manager) Abandon(id uuid.UUID) (State, error) {
	s, err := m.registry.Get(id)
	if err != nil {
		return State{}, err
	}
	if err := m.controller.AbandonSession(s); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

func (m *manager) Sweep(cutoff time.Time) int {
	idle := m.registry.Idle(cutoff)
	for _, s := range idle {
		m.controller.AbandonSession(s)
		m.registry.Remove(s.ID)
	}
	return len(idle)
}
