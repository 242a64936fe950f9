// Package authflow implements the login/registration form controller: it
// holds the form's fields, validates them locally, submits them to the
// identity API and hands the resulting session to the session provider.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/identity"
	"github.com/hongminglow/valide/internal/metrics"
	"github.com/hongminglow/valide/internal/models"
	"github.com/hongminglow/valide/internal/models/dto"
	"github.com/hongminglow/valide/internal/session"
	"github.com/hongminglow/valide/internal/validation"
)

// ErrSubmissionPending is returned by Submit and SetMode while a submission
// is in flight. Submit makes no network call in that case.
var ErrSubmissionPending = errors.New("authflow: submission already in flight")

// ErrInvalidForm is returned by Submit when local validation fails.
var ErrInvalidForm = errors.New("authflow: form has validation errors")

// Submit slot messages.
const (
	MsgUnreachable   = "Unable to reach the server. Please try again."
	MsgBadResponse   = "Unexpected response from the server. Please try again."
	MsgSessionStore  = "Signed in, but the session could not be saved. Please try again."
	defaultLoginFail = "Authentication failed"
)

// DefaultLanding is where a successful submission navigates.
const DefaultLanding = "/"

// Phase is the submission sub-state of the form.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	}
	return "idle"
}

// Fields are the values currently entered in the form.
type Fields struct {
	Email       string
	Password    string
	Username    string
	Phone       string
	Address     models.Address
	Preferences models.Preferences
}

// API is the part of the identity client the controller submits to.
type API interface {
	Login(ctx context.Context, req dto.LoginRequest) (identity.AuthResult, error)
	Register(ctx context.Context, req dto.RegisterRequest) (identity.AuthResult, error)
}

// Sessions receives the session after a successful submission.
type Sessions interface {
	Save(s session.Session) error
	Refresh(ctx context.Context) bool
}

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Notifier shows a transient, non-blocking message. Implementations must
// return promptly.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Controller is one instance of the authentication form. It is safe for
// concurrent use; at most one submission runs at a time.
type Controller struct {
	mu     sync.Mutex
	mode   validation.Mode
	phase  Phase
	fields Fields
	errs   validation.FormErrors

	api       API
	sessions  Sessions
	validator *validation.Validator
	navigator Navigator
	notifier  Notifier
	landing   string
	onPhase   func(from, to Phase)
	logger    *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithNavigator sets where a successful submission navigates.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.navigator = n }
}

// WithNotifier sets the failure notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLandingPath overrides DefaultLanding.
func WithLandingPath(path string) Option {
	return func(c *Controller) { c.landing = path }
}

// WithPhaseHook observes every phase transition. The hook runs after the
// controller's lock is released and may call back into the controller.
func WithPhaseHook(fn func(from, to Phase)) Option {
	return func(c *Controller) { c.onPhase = fn }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New returns a controller in Login/Idle.
func New(api API, sessions Sessions, opts ...Option) *Controller {
	c := &Controller{
		mode:      validation.ModeLogin,
		phase:     PhaseIdle,
		api:       api,
		sessions:  sessions,
		validator: validation.Default(),
		landing:   DefaultLanding,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("authflow")
	return c
}

// Mode returns whether the form is in login or registration mode.
func (c *Controller) Mode() validation.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Phase returns the current submission phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Submitting reports whether the submit control should be disabled.
func (c *Controller) Submitting() bool {
	return c.Phase() == PhaseSubmitting
}

// Errors returns the errors from the last submit attempt.
func (c *Controller) Errors() validation.FormErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// Fields returns a copy of the entered values.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// SetMode switches between login and registration and clears any errors.
func (c *Controller) SetMode(m validation.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseSubmitting {
		return ErrSubmissionPending
	}
	c.mode = m
	c.errs = validation.FormErrors{}
	return nil
}

// Toggle flips between login and registration.
func (c *Controller) Toggle() error {
	if c.Mode() == validation.ModeLogin {
		return c.SetMode(validation.ModeRegister)
	}
	return c.SetMode(validation.ModeLogin)
}

// SetField updates one text input. Phone input is reformatted as the user
// types. Unknown fields are ignored.
func (c *Controller) SetField(f validation.Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch f {
	case validation.FieldEmail:
		c.fields.Email = value
	case validation.FieldPassword:
		c.fields.Password = value
	case validation.FieldUsername:
		c.fields.Username = value
	case validation.FieldPhone:
		c.fields.Phone = validation.FormatPhone(value)
	}
}

// SetFields replaces every entered value at once.
func (c *Controller) SetFields(f Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = f
}

// SetAddress sets the optional registration address.
func (c *Controller) SetAddress(a models.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Address = a
}

// SetPreferences sets the optional registration preferences.
func (c *Controller) SetPreferences(p models.Preferences) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Preferences = p
}

// Submit validates the form and, if it is valid, submits it. It returns
// ErrSubmissionPending without side effects while another submission runs,
// ErrInvalidForm when local validation fails, and the wrapped API error when
// the identity API call fails. In every failing case Errors describes what
// went wrong and the form is editable again.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == PhaseSubmitting {
		mode := c.mode
		c.mu.Unlock()
		metrics.AuthSubmissions.WithLabelValues(mode.String(), "pending").Inc()
		return ErrSubmissionPending
	}

	mode := c.mode
	fields := c.fields
	fields.Email = strings.TrimSpace(fields.Email)
	errs := c.validator.Validate(mode, validation.Input{
		Email:    fields.Email,
		Password: fields.Password,
		Username: fields.Username,
		Phone:    fields.Phone,
	})
	c.errs = errs
	if !errs.Empty() {
		c.mu.Unlock()
		metrics.AuthSubmissions.WithLabelValues(mode.String(), "invalid").Inc()
		return ErrInvalidForm
	}
	started := c.transition(PhaseSubmitting)
	c.mu.Unlock()
	c.emit(started)

	result, err := c.call(ctx, mode, fields)
	if err == nil {
		if saveErr := c.sessions.Save(session.Session{Token: result.Token, User: result.User}); saveErr != nil {
			c.logger.Error("save session", zap.Error(saveErr))
			return c.fail(mode, fields.Password, MsgSessionStore, fmt.Errorf("save session: %w", saveErr))
		}
		c.succeed(ctx, mode, result.User)
		return nil
	}

	c.logger.Info("submission failed", zap.Stringer("mode", mode), zap.Error(err))
	return c.fail(mode, fields.Password, submitMessage(err), fmt.Errorf("%s: %w", mode, err))
}

func (c *Controller) call(ctx context.Context, mode validation.Mode, f Fields) (identity.AuthResult, error) {
	if mode == validation.ModeLogin {
		return c.api.Login(ctx, dto.LoginRequest{Email: f.Email, Password: f.Password})
	}

	req := dto.RegisterRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    f.Email,
		Password: f.Password,
		Phone:    validation.NormalizePhone(f.Phone),
	}
	if !f.Address.IsZero() {
		req.Addresses = []models.Address{f.Address}
	}
	if !f.Preferences.IsZero() {
		prefs := f.Preferences
		req.Preferences = &prefs
	}
	return c.api.Register(ctx, req)
}

func (c *Controller) succeed(ctx context.Context, mode validation.Mode, user models.User) {
	c.mu.Lock()
	c.errs = validation.FormErrors{}
	changes := []phaseChange{c.transition(PhaseSuccess), c.transition(PhaseIdle)}
	c.mu.Unlock()
	c.emit(changes...)

	metrics.AuthSubmissions.WithLabelValues(mode.String(), "success").Inc()
	c.logger.Info("authenticated", zap.Stringer("mode", mode), zap.String("username", user.Username))

	c.sessions.Refresh(ctx)
	if c.navigator != nil {
		c.navigator.Navigate(c.landing)
	}
}

// fail clears the password only if it is still the one that was submitted,
// so input typed during the request survives.
func (c *Controller) fail(mode validation.Mode, submitted, msg string, err error) error {
	c.mu.Lock()
	c.errs = validation.FormErrors{Submit: msg}
	if c.fields.Password == submitted {
		c.fields.Password = ""
	}
	changes := []phaseChange{c.transition(PhaseFailed), c.transition(PhaseIdle)}
	c.mu.Unlock()
	c.emit(changes...)

	metrics.AuthSubmissions.WithLabelValues(mode.String(), "failed").Inc()
	if c.notifier != nil {
		c.notifier.Notify(msg)
	}
	return err
}

type phaseChange struct{ from, to Phase }

// transition must be called with c.mu held. Pass the result to emit once the
// lock is released.
func (c *Controller) transition(to Phase) phaseChange {
	from := c.phase
	c.phase = to
	return phaseChange{from: from, to: to}
}

func (c *Controller) emit(changes ...phaseChange) {
	if c.onPhase == nil {
		return
	}
	for _, ch := range changes {
		c.onPhase(ch.from, ch.to)
	}
}

func submitMessage(err error) string {
	var apiErr *identity.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return defaultLoginFail
	case errors.Is(err, identity.ErrMissingToken):
		return MsgBadResponse
	}
	return MsgUnreachable
}
