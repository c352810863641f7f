package importer

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/skudeck/pkg/logger"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("import session not found")

// Session pairs a wizard with an id so HTTP clients can drive it statefully
type Session struct {
	ID        string
	Wizard    *Wizard
	CreatedAt time.Time
}

// Sessions is an in-memory registry of live import sessions.
// Sessions are short-lived: discarded on submit, cancel, or expiry.
type Sessions struct {
	svc    UploadService
	logger *logger.Logger
	maxAge time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions creates a session registry. Sessions older than maxAge are
// swept lazily on access.
func NewSessions(svc UploadService, log *logger.Logger, maxAge time.Duration) *Sessions {
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &Sessions{
		svc:      svc,
		logger:   log,
		maxAge:   maxAge,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a fresh wizard
func (s *Sessions) Create() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Wizard:    NewWizard(s.svc, s.logger),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sweepLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.WithField("session_id", session.ID).Debug("Import session created")
	return session
}

// Get returns the session for an id
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops a session from the registry
func (s *Sessions) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Count returns the number of live sessions
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweepLocked removes expired sessions. Caller holds the lock.
func (s *Sessions) sweepLocked() {
	cutoff := time.Now().Add(-s.maxAge)
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
