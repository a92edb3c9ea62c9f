package memory

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps turns in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]Turn)}
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, turns ...Turn) error {
	if err := validateAll(turns); err != nil {
		return err
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		s.sessions[sessionID] = append(s.sessions[sessionID], t)
	}
	return nil
}

func (s *InMemoryStore) Snapshot(_ context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sessions returns the ids of sessions holding at least one turn.
func (s *InMemoryStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

var _ Store = (*InMemoryStore)(nil)
