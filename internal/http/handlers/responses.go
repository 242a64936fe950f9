package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/valide/internal/catalog"
	"github.com/hongminglow/valide/internal/identity"
	"github.com/hongminglow/valide/internal/models"
)

// sessionView is what the browser learns about its session. The bearer
// token never leaves the gateway.
type sessionView struct {
	LoggedIn bool         `json:"loggedIn"`
	User     *models.User `json:"user,omitempty"`
}

func loggedIn(user models.User) sessionView {
	return sessionView{LoggedIn: true, User: &user}
}

// upstreamStatus maps an identity or catalog failure to the gateway's answer:
// client errors pass through, everything else is a bad gateway.
func upstreamStatus(err error) int {
	if errors.Is(err, identity.ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	var idErr *identity.APIError
	if errors.As(err, &idErr) && idErr.Status >= 400 && idErr.Status < 500 {
		return idErr.Status
	}
	var catErr *catalog.APIError
	if errors.As(err, &catErr) && catErr.Status >= 400 && catErr.Status < 500 {
		return catErr.Status
	}
	return http.StatusBadGateway
}

// upstreamMessage is the message shown to the browser for a catalog failure.
func upstreamMessage(err error, fallback string) string {
	var catErr *catalog.APIError
	if errors.As(err, &catErr) && catErr.Message != "" {
		return catErr.Message
	}
	return fallback
}
