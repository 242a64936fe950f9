package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	tm := NewTokenManager("secret", "valide-gateway", time.Hour)
	sid := NewSessionID()

	raw, err := tm.Generate(sid)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := tm.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != sid {
		t.Fatalf("session id = %q, want %q", got, sid)
	}
}

func TestParseRejects(t *testing.T) {
	tm := NewTokenManager("secret", "valide-gateway", time.Hour)
	sid := NewSessionID()
	raw, err := tm.Generate(sid)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	expired := NewTokenManager("secret", "valide-gateway", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate(sid)
	if err != nil {
		t.Fatalf("generate expired: %v", err)
	}

	notUUID, err := tm.Generate("not-a-uuid")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := map[string]struct {
		tm  *TokenManager
		raw string
	}{
		"garbage":      {tm, "not.a.jwt"},
		"wrong secret": {NewTokenManager("other", "valide-gateway", time.Hour), raw},
		"wrong issuer": {NewTokenManager("secret", "someone-else", time.Hour), raw},
		"expired":      {tm, old},
		"bad subject":  {tm, notUUID},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tt.tm.Parse(tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
