package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/valide/internal/session"
	"github.com/hongminglow/valide/internal/storage"
)

// TestStoreIntegration exercises the bucket store against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewBucketStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	sid := fmt.Sprintf("itest_%d", time.Now().UnixNano())
	bucket := storage.NewBucket(ctx, store, sid, time.Hour)
	provider := session.NewProvider(bucket, nil, nil)

	if err := provider.Save(session.Session{Token: "abc"}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if got := provider.Token(); got != "abc" {
		t.Fatalf("token = %q", got)
	}

	id := storage.BucketID(sid)
	if err := store.Set(ctx, id, "stale", "x", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("set stale: %v", err)
	}
	// The stale write moved the whole bucket into the past.
	if _, err := store.Get(ctx, id, session.KeyToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected expired token, got %v", err)
	}
	n, err := store.Purge(ctx, time.Now())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n < 2 {
		t.Fatalf("expected at least two purged rows, got %d", n)
	}

	t.Logf("bucket %s round-tripped and purged %d rows", id[:12], n)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
