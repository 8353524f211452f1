package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// DefaultLexicon is the keyword list used for the default arrufo/puntual labels.
var DefaultLexicon = map[string][]string{
	"arrufo": {
		"arrufo", "flecha", "deflexion", "deflexión", "pandeo", "combado",
		"curvatura", "hundimiento", "centro del vano", "vano", "viga", "losa",
		"horizontal", "longitudinal", "deformacion", "deformación",
	},
	"puntual": {
		"puntual", "localizada", "localizado", "aislada", "esquina", "apoyo",
		"carga concentrada", "concentrada", "impacto", "perforacion", "perforación",
		"anclaje", "diagonal", "desprendimiento",
	},
}

// Lexicon is a deterministic keyword classifier for offline use. Each label
// scores the number of its keywords found in the text; scores are a softmax
// over those counts scaled by sharpness.
type Lexicon struct {
	labels    LabelSet
	keywords  [][]string
	sharpness float64
}

// NewLexicon builds a Lexicon. Keywords for labels outside the set are rejected.
func NewLexicon(labels LabelSet, lexicon map[string][]string, sharpness float64) (*Lexicon, error) {
	if sharpness <= 0 {
		return nil, fmt.Errorf("sharpness must be positive: %v", sharpness)
	}

	keywords := make([][]string, labels.Len())
	for label, words := range lexicon {
		i, ok := labels.Index(label)
		if !ok {
			return nil, fmt.Errorf("lexicon label %q not in label set %s", label, labels)
		}
		for _, w := range words {
			if w = normalize(w); w != "" {
				keywords[i] = append(keywords[i], w)
			}
		}
	}

	return &Lexicon{labels: labels, keywords: keywords, sharpness: sharpness}, nil
}

func (l *Lexicon) Labels() LabelSet {
	return l.labels
}

func (l *Lexicon) Classify(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	padded := " " + normalize(text) + " "

	logits := make([]float64, l.labels.Len())
	for i, words := range l.keywords {
		for _, w := range words {
			logits[i] += float64(strings.Count(padded, " "+w+" "))
		}
		logits[i] *= l.sharpness
	}

	r, err := NewResult(l.labels, softmax(logits))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return r, nil
}

// normalize lowercases s and collapses every run of non-letter, non-digit
// runes into a single space.
func normalize(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func softmax(logits []float64) []float64 {
	peak := math.Inf(-1)
	for _, v := range logits {
		peak = max(peak, v)
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
