package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/metrics"
	"github.com/hongminglow/valide/internal/models"
)

// ErrClear marks a Logout whose local clear failed, leaving the stored token
// in place.
var ErrClear = errors.New("session: clear stored session")

// Session is the persisted result of a successful login or registration.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// State is what change listeners observe.
type State struct {
	LoggedIn bool
	User     models.User
}

// Authority is the slice of the identity API the provider needs.
type Authority interface {
	CheckAuth(ctx context.Context, token string) (bool, error)
	Logout(ctx context.Context, token string) error
}

// Provider owns the persisted session. Components receive it explicitly
// instead of touching Storage themselves.
type Provider struct {
	mu        sync.Mutex
	storage   Storage
	authority Authority
	logger    *zap.Logger
	listeners []func(State)
}

// NewProvider binds a provider to storage and the identity API.
func NewProvider(storage Storage, authority Authority, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{storage: storage, authority: authority, logger: logger.Named("session")}
}

// OnChange registers fn to run after every Save, Refresh and Logout.
func (p *Provider) OnChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Current returns the stored session. A token without a parseable user is
// treated as corrupt and both keys are cleared.
func (p *Provider) Current() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current()
}

// Token returns the stored bearer token or "".
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	token, _, err := p.storage.Get(KeyToken)
	if err != nil {
		p.logger.Warn("read token", zap.Error(err))
		return ""
	}
	return token
}

// IsLoggedIn reports whether a session is stored. It does not ask the server;
// use Refresh for that.
func (p *Provider) IsLoggedIn() bool {
	_, ok := p.Current()
	return ok
}

// Save persists s and notifies listeners.
func (p *Provider) Save(s Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	p.mu.Lock()
	if err := p.storage.Set(KeyToken, s.Token); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("store token: %w", err)
	}
	if err := p.storage.Set(KeyUser, string(user)); err != nil {
		_ = p.storage.Remove(KeyToken)
		p.mu.Unlock()
		return fmt.Errorf("store user: %w", err)
	}
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	notify(listeners, State{LoggedIn: true, User: s.User})
	return nil
}

// Refresh asks the identity API whether the stored token is still valid.
// No token, a negative answer or any error clears the stored session.
func (p *Provider) Refresh(ctx context.Context) bool {
	p.mu.Lock()
	token, _, err := p.storage.Get(KeyToken)
	p.mu.Unlock()
	if err != nil {
		p.logger.Warn("read token", zap.Error(err))
	}

	if token == "" {
		metrics.SessionChecks.WithLabelValues("absent").Inc()
		p.clearIf("", "no token")
		return false
	}

	valid, err := p.authority.CheckAuth(ctx, token)
	switch {
	case err != nil:
		metrics.SessionChecks.WithLabelValues("error").Inc()
		p.logger.Warn("auth check failed", zap.Error(err))
		p.clearIf(token, "check failed")
		return false
	case !valid:
		metrics.SessionChecks.WithLabelValues("invalid").Inc()
		p.clearIf(token, "token rejected")
		return false
	}

	metrics.SessionChecks.WithLabelValues("valid").Inc()
	p.mu.Lock()
	s, ok := p.current()
	listeners := p.snapshotListeners()
	p.mu.Unlock()
	notify(listeners, State{LoggedIn: ok, User: s.User})
	return ok
}

// Logout tells the identity API to end the session and then clears the
// stored session regardless of the outcome. The remote call is skipped when
// no token is stored. A failed local clear is returned wrapping ErrClear;
// otherwise the remote error, if any, is returned after the clear.
func (p *Provider) Logout(ctx context.Context) error {
	token := p.Token()

	var remoteErr error
	if token != "" {
		if err := p.authority.Logout(ctx, token); err != nil {
			p.logger.Warn("remote logout failed", zap.Error(err))
			remoteErr = fmt.Errorf("logout: %w", err)
		}
	}

	p.mu.Lock()
	clearErr := p.clear()
	listeners := p.snapshotListeners()
	p.mu.Unlock()
	notify(listeners, State{})

	if clearErr != nil {
		return errors.Join(fmt.Errorf("%w: %w", ErrClear, clearErr), remoteErr)
	}
	return remoteErr
}

// clearIf removes the stored session only if it still holds token, so a
// login that landed during a slow check is not thrown away.
func (p *Provider) clearIf(token, reason string) {
	p.mu.Lock()
	current, _, _ := p.storage.Get(KeyToken)
	if current != token {
		p.mu.Unlock()
		return
	}
	_ = p.clear()
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	p.logger.Debug("session cleared", zap.String("reason", reason))
	notify(listeners, State{})
}

func (p *Provider) current() (Session, bool) {
	token, ok, err := p.storage.Get(KeyToken)
	if err != nil || !ok || token == "" {
		return Session{}, false
	}
	raw, ok, err := p.storage.Get(KeyUser)
	if err != nil || !ok {
		return Session{}, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		p.logger.Warn("stored user is not valid JSON; clearing session", zap.Error(err))
		_ = p.clear()
		return Session{}, false
	}
	return Session{Token: token, User: user}, true
}

// clear removes both keys. Failures are logged and returned.
func (p *Provider) clear() error {
	var errs []error
	if err := p.storage.Remove(KeyToken); err != nil {
		p.logger.Warn("remove token", zap.Error(err))
		errs = append(errs, fmt.Errorf("remove token: %w", err))
	}
	if err := p.storage.Remove(KeyUser); err != nil {
		p.logger.Warn("remove user", zap.Error(err))
		errs = append(errs, fmt.Errorf("remove user: %w", err))
	}
	return errors.Join(errs...)
}

func (p *Provider) snapshotListeners() []func(State) {
	return append([]func(State){}, p.listeners...)
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
