package store

import (
	"sync"
	"time"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

// SessionStore holds every live conversation in process memory. Access to a
// single session is serialized through a per-key lock; distinct sessions
// proceed in parallel. This is the only shared mutable state in the core.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entry),
	}
}

// Acquire returns the session for id, creating it lazily, with its per-key
// lock held. The caller must invoke release when the turn is finished.
func (s *SessionStore) Acquire(id string) (*model.Session, func()) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{session: model.NewSession(id, time.Now())}
		s.sessions[id] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	return e.session, e.mu.Unlock
}

// Delete removes a session. A caller currently holding the session keeps a
// usable pointer for the rest of its turn; the next Acquire starts fresh.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// PruneIdle removes sessions whose last activity is before cutoff and
// returns how many were removed. Sessions with an in-flight turn are
// skipped rather than waited on.
func (s *SessionStore) PruneIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.session.LastActiveAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
