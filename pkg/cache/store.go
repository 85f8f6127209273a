package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store persists cache entries. Implementations must be safe for concurrent use.
type Store interface {
	// Name labels the store in metrics and logs.
	Name() string

	// Load returns the entry for key, or ErrCacheMiss.
	Load(ctx context.Context, key string) (*Entry, error)

	// Save writes entry, replacing any entry with the same key.
	Save(ctx context.Context, entry *Entry) error

	// Delete removes keys. Absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Flush removes every entry.
	Flush(ctx context.Context) error
}

// MemoryStore keeps entries in a process-local map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string {
	return "memory"
}

// Load implements Store. The returned entry owns its Value.
func (s *MemoryStore) Load(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	loaded := *entry
	loaded.Value = bytes.Clone(entry.Value)
	return &loaded, nil
}

// Save implements Store. The entry and its Value are copied; later changes
// by the caller do not affect the stored value.
func (s *MemoryStore) Save(_ context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}
	stored := *entry
	stored.Value = bytes.Clone(entry.Value)

	s.mu.Lock()
	s.entries[entry.Key] = &stored
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// Flush implements Store.
func (s *MemoryStore) Flush(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]*Entry)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
