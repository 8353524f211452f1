// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, audit log, archive storage, classifier)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/fissure/internal/classifier"
	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/lifecycle"
	"github.com/JaimeStill/fissure/pkg/logging"
	"github.com/JaimeStill/fissure/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, the audit log, report archive storage, and the classifier.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Audit      auditlog.System
	Storage    storage.System
	Classifier classifier.Classifier
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, logging.New(&cfg.Logging))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	audit, err := auditlog.New(&cfg.Audit, logger)
	if err != nil {
		return nil, fmt.Errorf("audit log init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	c, err := classifier.New(&cfg.Classifier, logger)
	if err != nil {
		return nil, fmt.Errorf("classifier init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Audit:      audit,
		Storage:    store,
		Classifier: c,
	}, nil
}

// Scoped returns a copy sharing every system, with the logger narrowed by
// the given attributes.
func (i *Infrastructure) Scoped(args ...any) *Infrastructure {
	scoped := *i
	scoped.Logger = i.Logger.With(args...)
	return &scoped
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Audit log and storage hooks are registered for startup coordination.
func (i *Infrastructure) Start() error {
	if err := i.Audit.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("audit log start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
