package http

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/quizbook/quizbook/internal/session"
)

// ErrSessionNotFound is returned for unknown or already-finished sessions.
var ErrSessionNotFound = errors.New("session not found")

// Manager holds the in-process active sessions keyed by id. The engine
// itself assumes serialized calls, so every operation on a managed session
// runs under the manager's lock.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*session.Session{}}
}

// Add registers a session and returns its id.
func (m *Manager) Add(s *session.Session) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.sessions[id] = s
	return id
}

// Do runs fn against the session with the given id, serialized.
func (m *Manager) Do(id string, fn func(*session.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(s)
}

// TakeCompleted returns the summary of a completed session and removes it
// in one step, so the outcome can only be recorded once. An in-progress
// session stays managed and the engine's transition error comes back.
func (m *Manager) TakeCompleted(id string) (session.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.Summary{}, ErrSessionNotFound
	}
	sum, err := s.Summary()
	if err != nil {
		return session.Summary{}, err
	}
	delete(m.sessions, id)
	return sum, nil
}

// Remove drops a session, whether completed or abandoned.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
