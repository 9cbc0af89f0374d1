package chat

import (
	"context"
	"sync"
	"time"

	"github.com/jaidee/backend/internal/model/chat"
)

// HistoryStore owns sessions and their turn histories. Append keeps at most
// limit turns per session, dropping the oldest first.
type HistoryStore interface {
	Create(ctx context.Context, session chat.Session) error
	Get(ctx context.Context, sessionID string) (chat.Session, error)
	Load(ctx context.Context, sessionID string) ([]chat.Turn, error)
	Append(ctx context.Context, sessionID string, limit int, turns ...chat.Turn) error
	Reset(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	turns    map[string][]chat.Turn
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
	}
}

func (s *MemoryStore) Create(_ context.Context, session chat.Session) error {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = make([]chat.Turn, 0, 16)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, limit int, turns ...chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	history := append(s.turns[sessionID], turns...)
	if limit > 0 && len(history) > limit {
		history = append([]chat.Turn(nil), history[len(history)-limit:]...)
	}
	s.turns[sessionID] = history

	session.UpdatedAt = time.Now().UTC()
	s.sessions[sessionID] = session
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.turns[sessionID] = make([]chat.Turn, 0, 16)
	session.UpdatedAt = time.Now().UTC()
	s.sessions[sessionID] = session
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.turns, sessionID)
	return nil
}

// Sweep evicts sessions idle since before now-ttl and returns their ids.
func (s *MemoryStore) Sweep(now time.Time, ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, session := range s.sessions {
		if now.Sub(session.UpdatedAt) > ttl {
			delete(s.sessions, id)
			delete(s.turns, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
