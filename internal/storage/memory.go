package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. Used by tests and by sessions run
// without a database; several sessions sharing one MemoryStore see each
// other's writes, which is how the shared event slot is exercised in tests.
type MemoryStore struct {
	notifier
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	s.mu.Lock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	s.mu.Unlock()
	s.notify(key)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	s.notify(key)
	return nil
}
