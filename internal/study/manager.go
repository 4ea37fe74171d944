package study

import (
	"sync"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

// Manager keeps at most one active session per user. Starting a new
// session replaces the previous one, which discards its pile state the
// same way navigating away from the study view does.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

func (m *Manager) Start(userID uuid.UUID, deck *models.FlashcardDeck) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := NewSession(deck)
	m.sessions[userID] = session
	return session
}

func (m *Manager) Get(userID uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[userID]
	return session, ok
}

// End removes the user's session and returns it so the caller can log
// the finished run.
func (m *Manager) End(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	return session, ok
}
