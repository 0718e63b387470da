package engine

import (
	"context"
	"sync"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

// SessionStore persists chat sessions between requests. Get must return
// domain.ErrSessionNotFound for unknown ids. Save persists the session state
// and any newly appended messages in a single logical transaction.
type SessionStore interface {
	Create(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
}

// MemorySessionStore is an in-memory SessionStore implementation, used by
// the local chat command and in tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *MemorySessionStore) Create(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

// Get returns a copy so the caller's read-modify-write cycle does not leak
// partial updates into the store before Save.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (s *MemorySessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func cloneSession(sess *domain.Session) *domain.Session {
	cp := *sess
	cp.Messages = make([]domain.Message, len(sess.Messages))
	copy(cp.Messages, sess.Messages)
	return &cp
}
