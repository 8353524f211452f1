package sessions

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/fissure/internal/classifier"
)

// Status is the position of a session in the refinement loop.
type Status string

const (
	StatusAwaitingInput   Status = "awaiting_input"
	StatusNeedsRefinement Status = "needs_refinement"
	StatusResolved        Status = "resolved"
	StatusAbandoned       Status = "abandoned"
)

// Terminal reports whether no further classification steps are allowed.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusAbandoned
}

// Attempt records one classification of the accumulated text. Increment is
// the text added for this attempt, empty for a retry.
type Attempt struct {
	Increment string            `json:"increment"`
	Result    classifier.Result `json:"result"`
	At        time.Time         `json:"at"`
}

// Session is one operator's refinement loop over a single defect
// description. It is safe for concurrent use; state is read through Snapshot.
type Session struct {
	ID    uuid.UUID
	Actor string

	inflight *semaphore.Weighted

	mu         sync.Mutex
	increments []string
	attempts   []Attempt
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

// State is a point-in-time copy of a session.
type State struct {
	ID         uuid.UUID `json:"id"`
	Actor      string    `json:"actor"`
	Text       string    `json:"text"`
	Increments []string  `json:"increments"`
	Attempts   []Attempt `json:"attempts"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Latest returns the most recent attempt, if any.
func (s State) Latest() (Attempt, bool) {
	if len(s.Attempts) == 0 {
		return Attempt{}, false
	}
	return s.Attempts[len(s.Attempts)-1], true
}

func newSession(actor, text string, now time.Time) *Session {
	return &Session{
		ID:         uuid.New(),
		Actor:      actor,
		inflight:   semaphore.NewWeighted(1),
		increments: []string{text},
		status:     StatusAwaitingInput,
		createdAt:  now,
		updatedAt:  now,
	}
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ID:         s.ID,
		Actor:      s.Actor,
		Text:       s.text(),
		Increments: slices.Clone(s.increments),
		Attempts:   slices.Clone(s.attempts),
		Status:     s.status,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Text returns the accumulated description.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text()
}

func (s *Session) text() string {
	return strings.Join(s.increments, " ")
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
