package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]*Entry
	byID    map[string]Key
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]*Entry),
		byID:    make(map[string]Key),
	}
}

func (s *MemoryStore) Lookup(_ context.Context, key Key, now time.Time) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !entry.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (s *MemoryStore) Upsert(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.entries[entry.Key]; ok {
		delete(s.byID, previous.ID)
	}
	copied := *entry
	copied.HitCount = 0
	s.entries[entry.Key] = &copied
	s.byID[entry.ID] = entry.Key
	return nil
}

func (s *MemoryStore) IncrementHit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.entries[key].HitCount++
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
