// Package classifier defines the port the session engine calls to label
// defect descriptions, and the adapters that implement it.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
)

// Classifier labels a non-empty description. Failures of any kind are
// reported as ErrUnavailable.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
	Labels() LabelSet
}

type funcClassifier struct {
	labels LabelSet
	fn     func(ctx context.Context, text string) (Result, error)
}

// NewFunc adapts fn into a Classifier over labels.
func NewFunc(labels LabelSet, fn func(ctx context.Context, text string) (Result, error)) Classifier {
	return &funcClassifier{labels: labels, fn: fn}
}

func (f *funcClassifier) Classify(ctx context.Context, text string) (Result, error) {
	return f.fn(ctx, text)
}

func (f *funcClassifier) Labels() LabelSet {
	return f.labels
}

// New constructs the configured adapter from a finalized Config.
func New(cfg *Config, logger *slog.Logger) (Classifier, error) {
	labels, err := NewLabelSet(cfg.Labels...)
	if err != nil {
		return nil, err
	}

	logger = logger.With("system", "classifier", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderLexicon:
		return NewLexicon(labels, cfg.Lexicon, cfg.Sharpness)
	case ProviderRemote:
		return NewRemote(labels, cfg.Endpoint, cfg.TimeoutDuration(), logger), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}
