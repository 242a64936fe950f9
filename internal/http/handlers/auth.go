package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/authflow"
	"github.com/hongminglow/valide/internal/http/respond"
	"github.com/hongminglow/valide/internal/models/dto"
	"github.com/hongminglow/valide/internal/session"
	"github.com/hongminglow/valide/internal/validation"
)

// Messages for submissions the gateway refuses or cannot complete.
const (
	msgOneAddress         = "Only one address can be registered"
	msgSessionUnconfirmed = "Signed in, but the session could not be confirmed. Please try again."
)

// AuthHandler owns the login, registration and session endpoints. Every
// submission runs through an authflow controller bound to the browser's
// session provider.
type AuthHandler struct {
	api      authflow.API
	sessions *Sessions
	logger   *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(api authflow.API, sessions *Sessions, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{api: api, sessions: sessions, logger: logger.Named("auth")}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/register", h.handleRegister)
		r.Get("/session", h.handleSession)
		r.Post("/logout", h.handleLogout)
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	c := authflow.New(h.api, provider, authflow.WithLogger(h.logger))
	c.SetFields(authflow.Fields{Email: req.Email, Password: req.Password})
	h.submit(w, r, c, provider)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Addresses) > 1 {
		respond.JSON(w, http.StatusUnprocessableEntity, msgOneAddress, validation.FormErrors{Submit: msgOneAddress})
		return
	}
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	c := authflow.New(h.api, provider, authflow.WithLogger(h.logger))
	if err := c.SetMode(validation.ModeRegister); err != nil {
		respond.Error(w, http.StatusConflict, err.Error())
		return
	}
	fields := authflow.Fields{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Phone:    req.Phone,
	}
	if len(req.Addresses) > 0 {
		fields.Address = req.Addresses[0]
	}
	if req.Preferences != nil {
		fields.Preferences = *req.Preferences
	}
	c.SetFields(fields)
	h.submit(w, r, c, provider)
}

func (h *AuthHandler) submit(w http.ResponseWriter, r *http.Request, c *authflow.Controller, provider *session.Provider) {
	err := c.Submit(r.Context())
	switch {
	case err == nil:
		// The post-login check may have cleared the session again.
		s, ok := provider.Current()
		if !ok {
			h.logger.Warn("session cleared by post-login check")
			respond.JSON(w, http.StatusBadGateway, msgSessionUnconfirmed, validation.FormErrors{Submit: msgSessionUnconfirmed})
			return
		}
		respond.JSON(w, http.StatusOK, "authenticated", loggedIn(s.User))
	case errors.Is(err, authflow.ErrInvalidForm):
		respond.JSON(w, http.StatusUnprocessableEntity, "validation failed", c.Errors())
	case errors.Is(err, authflow.ErrSubmissionPending):
		respond.Error(w, http.StatusConflict, "submission already in progress")
	default:
		errs := c.Errors()
		respond.JSON(w, upstreamStatus(err), errs.Submit, errs)
	}
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	provider.Refresh(r.Context())
	s, ok := provider.Current()
	if !ok {
		respond.JSON(w, http.StatusOK, "not logged in", sessionView{})
		return
	}
	respond.JSON(w, http.StatusOK, "logged in", loggedIn(s.User))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}
	if err := provider.Logout(r.Context()); err != nil {
		h.logger.Warn("remote logout failed; local session cleared", zap.Error(err))
	}
	respond.JSON(w, http.StatusOK, "logged out", sessionView{})
}

func (h *AuthHandler) provider(w http.ResponseWriter, r *http.Request) (*session.Provider, bool) {
	provider, err := h.sessions.For(r)
	if err != nil {
		h.logger.Error("open session", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return provider, true
}
