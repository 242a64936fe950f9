package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/valide/internal/storage"
)

// Ensure Store satisfies the storage.BucketStore interface at compile time.
var _ storage.BucketStore = (*Store)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// Store keeps buckets in process memory. It is used when no database is
// configured and in tests.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]entry
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{buckets: make(map[string]map[string]entry), now: time.Now}
}

// Get returns the live value stored under bucket/key.
func (s *Store) Get(_ context.Context, bucket, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.buckets[bucket][key]
	if !ok || !e.expiresAt.After(s.now()) {
		return "", storage.ErrNotFound
	}
	return e.value, nil
}

// Set stores value under bucket/key and moves the whole bucket's expiry to
// expiresAt.
func (s *Store) Set(_ context.Context, bucket, key, value string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		b = make(map[string]entry)
		s.buckets[bucket] = b
	}
	for k, e := range b {
		e.expiresAt = expiresAt
		b[k] = e
	}
	b[key] = entry{value: value, expiresAt: expiresAt}
	return nil
}

// Delete removes bucket/key.
func (s *Store) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return storage.ErrNotFound
	}
	if _, ok := b[key]; !ok {
		return storage.ErrNotFound
	}
	delete(b, key)
	if len(b) == 0 {
		delete(s.buckets, bucket)
	}
	return nil
}

// Purge drops every entry that expired at or before now.
func (s *Store) Purge(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.buckets {
		for key, e := range b {
			if !e.expiresAt.After(now) {
				delete(b, key)
				n++
			}
		}
		if len(b) == 0 {
			delete(s.buckets, id)
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *Store) Close() {}
