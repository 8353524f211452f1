package classifier

import (
	"encoding/json"
	"fmt"
	"math"
)

// SumTolerance bounds how far a score vector may sum from 1.
const SumTolerance = 1e-3

// Result is an immutable classification outcome: one score per label,
// aligned with the label set's declared order.
type Result struct {
	labels LabelSet
	scores []float64
}

// NewResult validates scores against labels. Every score must lie in [0,1]
// and the vector must sum to 1 within SumTolerance.
func NewResult(labels LabelSet, scores []float64) (Result, error) {
	if labels.Len() == 0 {
		return Result{}, fmt.Errorf("%w: empty label set", ErrMalformedResult)
	}
	if len(scores) != labels.Len() {
		return Result{}, fmt.Errorf("%w: got %d scores for %d labels", ErrMalformedResult, len(scores), labels.Len())
	}

	var sum float64
	for i, s := range scores {
		if math.IsNaN(s) || s < 0 || s > 1 {
			return Result{}, fmt.Errorf("%w: score for %q out of range: %v", ErrMalformedResult, labels.Name(i), s)
		}
		sum += s
	}
	if math.Abs(sum-1) > SumTolerance {
		return Result{}, fmt.Errorf("%w: scores sum to %v", ErrMalformedResult, sum)
	}

	v := make([]float64, len(scores))
	copy(v, scores)
	return Result{labels: labels, scores: v}, nil
}

// NewResultFromMap builds a Result from a label→score map. The map must
// contain exactly the labels of the set.
func NewResultFromMap(labels LabelSet, scores map[string]float64) (Result, error) {
	if len(scores) != labels.Len() {
		return Result{}, fmt.Errorf("%w: got %d scores for %d labels", ErrMalformedResult, len(scores), labels.Len())
	}

	v := make([]float64, labels.Len())
	for name, s := range scores {
		i, ok := labels.Index(name)
		if !ok {
			return Result{}, fmt.Errorf("%w: unknown label %q", ErrMalformedResult, name)
		}
		v[i] = s
	}
	return NewResult(labels, v)
}

// Labels returns the label set the scores are aligned with.
func (r Result) Labels() LabelSet {
	return r.labels
}

// Label returns the winning label. Equal top scores resolve to the label
// declared first.
func (r Result) Label() string {
	if len(r.scores) == 0 {
		return ""
	}
	return r.labels.Name(r.argmax())
}

// Confidence returns the maximum score.
func (r Result) Confidence() float64 {
	if len(r.scores) == 0 {
		return 0
	}
	return r.scores[r.argmax()]
}

func (r Result) argmax() int {
	best := 0
	for i := 1; i < len(r.scores); i++ {
		if r.scores[i] > r.scores[best] {
			best = i
		}
	}
	return best
}

// Score returns the score of name.
func (r Result) Score(name string) (float64, bool) {
	i, ok := r.labels.Index(name)
	if !ok {
		return 0, false
	}
	return r.scores[i], true
}

// Scores returns the scores keyed by label.
func (r Result) Scores() map[string]float64 {
	m := make(map[string]float64, len(r.scores))
	for i, s := range r.scores {
		m[r.labels.Name(i)] = s
	}
	return m
}

// Vector returns a copy of the scores in declared label order.
func (r Result) Vector() []float64 {
	v := make([]float64, len(r.scores))
	copy(v, r.scores)
	return v
}

// IsZero reports whether r is the zero Result.
func (r Result) IsZero() bool {
	return len(r.scores) == 0
}

type resultJSON struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(resultJSON{
		Label:      r.Label(),
		Confidence: r.Confidence(),
		Scores:     r.Scores(),
	})
}
