package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/fissure/pkg/formatting"
)

const maxResponseBytes = 1 << 20

type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// Remote classifies by POSTing the text to an inference endpoint that
// answers {"scores": {"label": p, ...}}.
type Remote struct {
	labels   LabelSet
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewRemote creates a Remote adapter. A non-positive timeout disables the
// client timeout and leaves deadlines to the caller's context.
func NewRemote(labels LabelSet, endpoint string, timeout time.Duration, logger *slog.Logger) *Remote {
	client := &http.Client{}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &Remote{
		labels:   labels,
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

func (r *Remote) Labels() LabelSet {
	return r.labels
}

func (r *Remote) Classify(ctx context.Context, text string) (Result, error) {
	start := time.Now()

	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode request: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: endpoint returned %s", ErrUnavailable, resp.Status)
	}

	parsed, err := formatting.Parse[remoteResponse](string(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result, err := NewResultFromMap(r.labels, parsed.Scores)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	r.logger.Debug("classified",
		"label", result.Label(),
		"confidence", result.Confidence(),
		"duration", time.Since(start),
	)
	return result, nil
}
