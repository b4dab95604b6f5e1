package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fakhiuBack/internal/models"
)

// Registry keeps the live sessions in memory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create opens a new session for the given owner key.
func (r *Registry) Create(owner string) *Session {
	s := newSession(uuid.NewString(), owner, r.now)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session only when it belongs to owner.
func (r *Registry) Get(id, owner string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.Owner() != owner {
		return nil, models.ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Delete removes a session owned by owner.
func (r *Registry) Delete(id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Owner() != owner {
		return models.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// ByOwner lists the sessions of one owner.
func (r *Registry) ByOwner(owner string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.sessions {
		if s.Owner() == owner {
			out = append(out, s)
		}
	}
	return out
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
