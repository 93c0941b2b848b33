package tokenstore

import "sync"

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps the tokens for the lifetime of the process.
type InMemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
}

// NewInMemoryStore creates an empty in-memory token store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load() (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, nil
}

func (s *InMemoryStore) Save(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	return nil
}

func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return nil
}
