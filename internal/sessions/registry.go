package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks sessions by id for callers that address them remotely.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Add registers s.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the session with id or ErrNotFound.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove drops the session with id.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Idle returns the sessions last updated before cutoff.
func (r *Registry) Idle(cutoff time.Time) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var idle []*Session
	for _, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
		}
	}
	return idle
}
