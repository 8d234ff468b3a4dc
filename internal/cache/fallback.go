package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// LRUStore is the in-process fallback tier: a fixed-capacity store that
// evicts the least recently used entry when full.
//
// It exists only for degraded operation, so capacity is deliberately small
// and entries still honor their TTL (an expired entry is treated as absent
// and removed on access).
//
// The store is thread-safe; a single mutex guards both the entry map and the
// recency list.
type LRUStore struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	clock      Clock
}

// lruEntry is the list element payload holding one cache entry.
type lruEntry struct {
	key       string
	value     []byte
	storedAt  time.Time
	expiresAt time.Time
}

// LRUStoreConfig holds configuration for LRUStore.
type LRUStoreConfig struct {
	// MaxEntries is the fixed capacity. Default: 256.
	MaxEntries int

	// Clock provides time operations for testing. Default: SystemClock.
	Clock Clock
}

// NewLRUStore creates a fallback-tier store with the given configuration.
func NewLRUStore(cfg LRUStoreConfig) *LRUStore {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 256
	}
	if cfg.Clock == nil {
		cfg.Clock = &SystemClock{}
	}

	return &LRUStore{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: cfg.MaxEntries,
		clock:      cfg.Clock,
	}
}

// Get returns the unexpired entry stored under key and marks it most
// recently used.
func (s *LRUStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.entries[key]
	if !exists {
		return nil, nil
	}

	ent := elem.Value.(*lruEntry)
	if !s.clock.Now().Before(ent.expiresAt) {
		s.order.Remove(elem)
		delete(s.entries, key)
		return nil, nil
	}

	s.order.MoveToFront(elem)
	return &Entry{Value: ent.value, StoredAt: ent.storedAt}, nil
}

// Set stores value under key, evicting the least recently used entry if the
// store is at capacity. An existing entry for the key is replaced, never
// mutated: the old element is discarded and a fresh one takes its place.
func (s *LRUStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("fallback cache set: ttl must be positive, got %v", ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.entries[key]; exists {
		s.order.Remove(old)
		delete(s.entries, key)
	} else if len(s.entries) >= s.maxEntries {
		s.evictLRU()
	}

	now := s.clock.Now()
	s.entries[key] = s.order.PushFront(&lruEntry{
		key:       key,
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	})

	return nil
}

// Ping always succeeds: the fallback tier has no external dependency.
func (s *LRUStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictLRU removes the back (least recently used) element.
// Must be called while holding the mutex.
func (s *LRUStore) evictLRU() {
	victim := s.order.Back()
	if victim == nil {
		return
	}
	s.order.Remove(victim)
	delete(s.entries, victim.Value.(*lruEntry).key)
}
