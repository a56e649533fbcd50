package localstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps everything in a map. A positive quota caps the total
// size of keys plus values in bytes; writes past it fail with
// ErrQuotaExceeded and leave the store unchanged.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int
	quota int
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{data: make(map[string]string), quota: quota}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + len(key) + len(value)
	if old, ok := s.data[key]; ok {
		used -= len(key) + len(old)
	}
	if s.quota > 0 && used > s.quota {
		return ErrQuotaExceeded
	}

	s.data[key] = value
	s.used = used
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.data[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	s.used = 0
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, entries map[string]string) error {
	used := 0
	for k, v := range entries {
		used += len(k) + len(v)
	}
	if s.quota > 0 && used > s.quota {
		return ErrQuotaExceeded
	}

	data := make(map[string]string, len(entries))
	for k, v := range entries {
		data[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.used = used
	return nil
}

func (s *MemoryStore) Close() error { return nil }
