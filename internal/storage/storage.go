package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/hongminglow/valide/internal/session"
)

// ErrNotFound indicates a record does not exist or has expired.
var ErrNotFound = errors.New("record not found")

// BucketStore persists the gateway's per-browser key/value buckets. A bucket
// is the server-side stand-in for one browser's local storage.
type BucketStore interface {
	Get(ctx context.Context, bucket, key string) (string, error)
	Set(ctx context.Context, bucket, key, value string, expiresAt time.Time) error
	Delete(ctx context.Context, bucket, key string) error
	Purge(ctx context.Context, now time.Time) (int64, error)
	Close()
}

// BucketID derives the storage key for a browser session id. Raw ids only
// ever live in the signed cookie.
func BucketID(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}

// Ensure Bucket satisfies session.Storage at compile time.
var _ session.Storage = (*Bucket)(nil)

// Bucket exposes one bucket of a BucketStore as a session.Storage. Every
// write pushes the bucket's expiry ttl into the future.
type Bucket struct {
	ctx   context.Context
	store BucketStore
	id    string
	ttl   time.Duration
	now   func() time.Time
}

// NewBucket binds the bucket of sessionID to ctx, typically a request context.
func NewBucket(ctx context.Context, store BucketStore, sessionID string, ttl time.Duration) *Bucket {
	return &Bucket{ctx: ctx, store: store, id: BucketID(sessionID), ttl: ttl, now: time.Now}
}

// Get reads key. A missing or expired key reports ok=false.
func (b *Bucket) Get(key string) (string, bool, error) {
	v, err := b.store.Get(b.ctx, b.id, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set writes key.
func (b *Bucket) Set(key, value string) error {
	return b.store.Set(b.ctx, b.id, key, value, b.now().Add(b.ttl))
}

// Remove deletes key. Removing a missing key is not an error.
func (b *Bucket) Remove(key string) error {
	err := b.store.Delete(b.ctx, b.id, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
