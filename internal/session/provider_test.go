package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hongminglow/valide/internal/models"
)

type fakeAuthority struct {
	valid      bool
	checkErr   error
	logoutErr  error
	checks     int
	logouts    int
	lastToken  string
	beforeDone func()
}

func (f *fakeAuthority) CheckAuth(_ context.Context, token string) (bool, error) {
	f.checks++
	f.lastToken = token
	if f.beforeDone != nil {
		f.beforeDone()
	}
	return f.valid, f.checkErr
}

func (f *fakeAuthority) Logout(_ context.Context, token string) error {
	f.logouts++
	f.lastToken = token
	return f.logoutErr
}

var ada = models.User{ID: "u1", Username: "ada", Email: "ada@maison.com", Phone: "5551234567"}

func TestSaveAndCurrent(t *testing.T) {
	p := NewProvider(NewMemoryStorage(), &fakeAuthority{}, nil)
	if _, ok := p.Current(); ok {
		t.Fatal("fresh provider should have no session")
	}
	if err := p.Save(Session{Token: "abc", User: ada}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, ok := p.Current()
	if !ok || s.Token != "abc" || s.User != ada {
		t.Fatalf("unexpected session %+v ok=%v", s, ok)
	}
	if p.Token() != "abc" || !p.IsLoggedIn() {
		t.Fatal("token accessors disagree with Current")
	}
}

func TestCorruptUserClearsSession(t *testing.T) {
	store := NewMemoryStorage()
	_ = store.Set(KeyToken, "abc")
	_ = store.Set(KeyUser, "{not json")

	p := NewProvider(store, &fakeAuthority{}, nil)
	if _, ok := p.Current(); ok {
		t.Fatal("corrupt user should not yield a session")
	}
	if _, ok, _ := store.Get(KeyToken); ok {
		t.Fatal("token should be cleared alongside the corrupt user")
	}
}

func TestRefreshWithoutTokenSkipsNetwork(t *testing.T) {
	auth := &fakeAuthority{valid: true}
	p := NewProvider(NewMemoryStorage(), auth, nil)
	if p.Refresh(context.Background()) {
		t.Fatal("refresh without token must report logged out")
	}
	if auth.checks != 0 {
		t.Fatalf("check-auth called %d times", auth.checks)
	}
}

func TestRefreshKeepsValidSession(t *testing.T) {
	auth := &fakeAuthority{valid: true}
	p := NewProvider(NewMemoryStorage(), auth, nil)
	_ = p.Save(Session{Token: "abc", User: ada})

	var seen []State
	p.OnChange(func(s State) { seen = append(seen, s) })

	if !p.Refresh(context.Background()) {
		t.Fatal("valid token reported as logged out")
	}
	if auth.lastToken != "abc" {
		t.Fatalf("checked token %q", auth.lastToken)
	}
	if len(seen) != 1 || !seen[0].LoggedIn || seen[0].User.Username != "ada" {
		t.Fatalf("listener saw %+v", seen)
	}
}

func TestRefreshClearsRejectedOrFailedSession(t *testing.T) {
	for name, auth := range map[string]*fakeAuthority{
		"rejected": {valid: false},
		"error":    {checkErr: errors.New("connection refused")},
	} {
		t.Run(name, func(t *testing.T) {
			p := NewProvider(NewMemoryStorage(), auth, nil)
			_ = p.Save(Session{Token: "abc", User: ada})
			if p.Refresh(context.Background()) {
				t.Fatal("refresh should report logged out")
			}
			if p.Token() != "" {
				t.Fatal("token should be cleared")
			}
		})
	}
}

func TestRefreshDoesNotClobberNewerLogin(t *testing.T) {
	store := NewMemoryStorage()
	auth := &fakeAuthority{valid: false}
	p := NewProvider(store, auth, nil)
	_ = p.Save(Session{Token: "old", User: ada})

	auth.beforeDone = func() {
		_ = p.Save(Session{Token: "new", User: ada})
	}
	p.Refresh(context.Background())

	if got := p.Token(); got != "new" {
		t.Fatalf("token = %q, newer login was discarded", got)
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	auth := &fakeAuthority{logoutErr: errors.New("503 service unavailable")}
	p := NewProvider(NewMemoryStorage(), auth, nil)
	_ = p.Save(Session{Token: "abc", User: ada})

	err := p.Logout(context.Background())
	if err == nil {
		t.Fatal("remote failure should be reported")
	}
	if auth.logouts != 1 || auth.lastToken != "abc" {
		t.Fatalf("logout call: count=%d token=%q", auth.logouts, auth.lastToken)
	}
	if p.Token() != "" || p.IsLoggedIn() {
		t.Fatal("session must be cleared even when the remote logout fails")
	}
}

func TestLogoutWithoutSessionSkipsNetwork(t *testing.T) {
	auth := &fakeAuthority{}
	p := NewProvider(NewMemoryStorage(), auth, nil)
	if err := p.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if auth.logouts != 0 {
		t.Fatal("no token, no remote logout")
	}
}

type stuckStorage struct {
	*MemoryStorage
}

func (stuckStorage) Remove(string) error { return errors.New("read-only") }

func TestLogoutReportsFailedClear(t *testing.T) {
	auth := &fakeAuthority{}
	store := stuckStorage{NewMemoryStorage()}
	p := NewProvider(store, auth, nil)
	_ = p.Save(Session{Token: "abc", User: ada})

	err := p.Logout(context.Background())
	if !errors.Is(err, ErrClear) {
		t.Fatalf("expected ErrClear, got %v", err)
	}
	if auth.logouts != 1 {
		t.Fatalf("remote logout should still run, got %d calls", auth.logouts)
	}
}

func TestLogoutClearsTokenWithoutUser(t *testing.T) {
	auth := &fakeAuthority{}
	store := NewMemoryStorage()
	_ = store.Set(KeyToken, "abc")
	p := NewProvider(store, auth, nil)

	if p.IsLoggedIn() {
		t.Fatal("a token without a user is not a session")
	}
	if err := p.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if auth.logouts != 1 || p.Token() != "" {
		t.Fatalf("token-only state not cleared: logouts=%d token=%q", auth.logouts, p.Token())
	}
}

func TestFileStorageRemoveRewritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileStorage(path)
	if _, _, err := fs.Get(KeyToken); err == nil {
		t.Fatal("expected a parse error before removal")
	}
	if err := fs.Remove(KeyToken); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, err := fs.Get(KeyToken); err != nil || ok {
		t.Fatalf("after remove: ok=%v err=%v", ok, err)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStorage(path)

	if _, ok, err := fs.Get(KeyToken); err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
	if err := fs.Set(KeyToken, "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := NewFileStorage(path)
	if v, ok, err := reopened.Get(KeyToken); err != nil || !ok || v != "abc" {
		t.Fatalf("get after reopen: %q %v %v", v, ok, err)
	}
	if err := reopened.Remove(KeyToken); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := reopened.Remove(KeyToken); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, ok, _ := fs.Get(KeyToken); ok {
		t.Fatal("token still present after remove")
	}
}

func TestProviderOverFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	p := NewProvider(NewFileStorage(path), &fakeAuthority{}, nil)
	if err := p.Save(Session{Token: "abc", User: ada}); err != nil {
		t.Fatalf("save: %v", err)
	}

	again := NewProvider(NewFileStorage(path), &fakeAuthority{}, nil)
	s, ok := again.Current()
	if !ok || s.User.Email != ada.Email {
		t.Fatalf("session not persisted: %+v", s)
	}
}

func TestDefaultFilePath(t *testing.T) {
	t.Setenv("VALIDE_SESSION_FILE", "/tmp/explicit.json")
	if got := DefaultFilePath(); got != "/tmp/explicit.json" {
		t.Fatalf("env override ignored: %q", got)
	}

	t.Setenv("VALIDE_SESSION_FILE", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultFilePath(); got != filepath.Join("/xdg", "valide", "session.json") {
		t.Fatalf("xdg path = %q", got)
	}
}
