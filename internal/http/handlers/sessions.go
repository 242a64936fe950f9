package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/middleware"
	"github.com/hongminglow/valide/internal/session"
	"github.com/hongminglow/valide/internal/storage"
)

var errNoBrowserSession = errors.New("request carries no browser session")

// Sessions opens the session provider of the browser behind a request. Each
// browser's provider reads and writes its own storage bucket.
type Sessions struct {
	store     storage.BucketStore
	authority session.Authority
	ttl       time.Duration
	logger    *zap.Logger
}

// NewSessions creates the provider factory.
func NewSessions(store storage.BucketStore, authority session.Authority, ttl time.Duration, logger *zap.Logger) *Sessions {
	return &Sessions{store: store, authority: authority, ttl: ttl, logger: logger}
}

// For returns the provider for r's browser session. The provider is bound
// to r's context.
func (s *Sessions) For(r *http.Request) (*session.Provider, error) {
	id, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		return nil, errNoBrowserSession
	}
	bucket := storage.NewBucket(r.Context(), s.store, id, s.ttl)
	logger := s.logger.With(zap.String("request_id", middleware.RequestIDFrom(r.Context())))
	return session.NewProvider(bucket, s.authority, logger), nil
}
