package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hongminglow/valide/internal/storage"
)

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "b", "token", "abc", now.Add(time.Minute)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := s.Get(ctx, "b", "token"); err != nil || v != "abc" {
		t.Fatalf("get = %q, %v", v, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "b", "token"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected expired entry to be missing, got %v", err)
	}
	n, err := s.Purge(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("purge = %d, %v", n, err)
	}
}

func TestSetSlidesBucketExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "b", "token", "abc", now.Add(time.Minute))
	_ = s.Set(ctx, "b", "user", "{}", now.Add(time.Hour))

	now = now.Add(30 * time.Minute)
	if _, err := s.Get(ctx, "b", "token"); err != nil {
		t.Fatalf("token should have been kept alive by the later write: %v", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	s := NewStore()
	if err := s.Delete(context.Background(), "b", "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
