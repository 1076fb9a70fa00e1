package client

import (
	"sync"

	"jobselect/domain"
)

// SessionStore holds the one active session of a client instance. It starts
// empty and is safe for concurrent use.
type SessionStore struct {
	mu      sync.RWMutex
	session domain.Session
	set     bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Get returns a copy of the current session, if any.
func (s *SessionStore) Get() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return domain.Session{}, false
	}
	return s.session, true
}

// Set replaces the current session in one step.
func (s *SessionStore) Set(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.set = true
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	s.set = false
}
