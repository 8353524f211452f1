package classifier

import (
	"fmt"
	"strings"
)

// LabelSet is the closed, ordered set of class names a classifier can emit.
// Declaration order is significant: it breaks score ties and orders reports.
type LabelSet struct {
	names []string
	index map[string]int
}

// NewLabelSet validates names and returns a LabelSet in the given order.
// At least two unique, non-blank names are required.
func NewLabelSet(names ...string) (LabelSet, error) {
	if len(names) < 2 {
		return LabelSet{}, fmt.Errorf("%w: need at least 2 labels, got %d", ErrInvalidLabels, len(names))
	}

	set := LabelSet{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}

	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return LabelSet{}, fmt.Errorf("%w: label %d is blank", ErrInvalidLabels, i)
		}
		if _, dup := set.index[n]; dup {
			return LabelSet{}, fmt.Errorf("%w: duplicate label %q", ErrInvalidLabels, n)
		}
		set.names[i] = n
		set.index[n] = i
	}

	return set, nil
}

// MustLabelSet is NewLabelSet for static label lists; it panics on error.
func MustLabelSet(names ...string) LabelSet {
	set, err := NewLabelSet(names...)
	if err != nil {
		panic(err)
	}
	return set
}

// Names returns a copy of the label names in declared order.
func (l LabelSet) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Len returns the number of labels.
func (l LabelSet) Len() int {
	return len(l.names)
}

// Index returns the declared position of name.
func (l LabelSet) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Name returns the label at position i.
func (l LabelSet) Name(i int) string {
	return l.names[i]
}

func (l LabelSet) String() string {
	return strings.Join(l.names, ",")
}
