// Package session models who is acting on behalf of a request: every session
// starts anonymous and becomes authenticated only after a verified login or a
// valid signed token.
package session

import "sync"

// State is the authentication state of a Session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session carries the current user identity through one request or CLI run.
type Session struct {
	mu       sync.RWMutex
	state    State
	username string
}

// New returns an anonymous session.
func New() *Session {
	return &Session{}
}

// Authenticate transitions the session to Authenticated(username).
// An empty username leaves the session anonymous.
func (s *Session) Authenticate(username string) {
	if username == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Authenticated
	s.username = username
}

// Reset returns the session to the anonymous state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Anonymous
	s.username = ""
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Username returns the authenticated user, or false for anonymous sessions.
func (s *Session) Username() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, s.state == Authenticated
}
