package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/auth"
)

// SessionCookie names the cookie that carries the signed browser session id.
const SessionCookie = "valide_sid"

type sessionIDKey struct{}

// SessionIDFrom returns the browser session id BrowserSession resolved.
func SessionIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey{}).(string)
	return v, ok && v != ""
}

// WithSessionID stores a browser session id in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// BrowserSession resolves the browser's session id from its cookie, issuing a
// new id and cookie when the cookie is missing or fails verification.
func BrowserSession(tokens *auth.TokenManager, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(SessionCookie); err == nil {
				id, err := tokens.Parse(c.Value)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
					return
				}
				logger.Debug("discarding session cookie", zap.Error(err))
			}

			id := auth.NewSessionID()
			raw, err := tokens.Generate(id)
			if err != nil {
				logger.Error("issue session cookie", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    raw,
				Path:     "/",
				Expires:  time.Now().Add(tokens.TTL()),
				MaxAge:   int(tokens.TTL() / time.Second),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}
