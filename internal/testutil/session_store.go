package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// MemorySessionStore is an in-process user.SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]user.Session
	Now      func() time.Time
	// GetErr, when set, is returned by every Get.
	GetErr error
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]user.Session), Now: time.Now}
}

var _ user.SessionStore = (*MemorySessionStore)(nil)

func (m *MemorySessionStore) Create(_ context.Context, s *user.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, token string) (*user.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s, ok := m.sessions[token]
	if !ok || s.Expired(m.Now()) {
		return nil, errors.NotFound("session not found")
	}
	return &s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
