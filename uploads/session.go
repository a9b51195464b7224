package uploads

import (
	"sync"
	"time"
)

type SessionState uint8

const (
	SessionRequested SessionState = iota
	SessionGranted
	SessionObjectWritten
	SessionMetadataPersisted
	SessionAbandoned
)

func (s SessionState) String() string {
	switch s {
	case SessionRequested:
		return "requested"
	case SessionGranted:
		return "granted"
	case SessionObjectWritten:
		return "object-written"
	case SessionMetadataPersisted:
		return "metadata-persisted"
	case SessionAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Terminal states: metadata-persisted (success) and abandoned (failure).
func (s SessionState) Terminal() bool {
	return s == SessionMetadataPersisted || s == SessionAbandoned
}

// Session tracks one logical upload from grant to its terminal state.
// Lives only in the broker's map, never in durable storage.
type Session struct {
	StorageKey  string
	FileName    string
	ContentType string
	RequesterID uint64
	ExpiresAt   time.Time

	mu    sync.Mutex
	state SessionState
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// advance moves the session forward. Terminal states are final; a late
// transition attempt on a terminal session reports false.
func (s *Session) advance(to SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return false
	}
	s.state = to
	return true
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
