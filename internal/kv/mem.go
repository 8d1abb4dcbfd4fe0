package kv

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. FailWith makes every later call return
// the given error, which lets tests simulate unavailable storage.
type MemStore struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

func NewMemStore() *MemStore {
	return &MemStore{entries: map[string]string{}}
}

func (s *MemStore) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *MemStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries[key] = value
	return nil
}

func (s *MemStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.entries, key)
	return nil
}

func (s *MemStore) Close() error { return nil }
