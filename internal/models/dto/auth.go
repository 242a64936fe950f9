package dto

import "github.com/hongminglow/valide/internal/models"

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username    string              `json:"username"`
	Email       string              `json:"email"`
	Password    string              `json:"password"`
	Phone       string              `json:"phone"`
	Addresses   []models.Address    `json:"addresses,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

// LoginResponse is the success body of POST /login.
type LoginResponse struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message,omitempty"`
}

// RegisterResponse is the success body of POST /register. The identity API
// returns the created user under "data" rather than "user".
type RegisterResponse struct {
	Token   string      `json:"token"`
	Data    models.User `json:"data"`
	Message string      `json:"message,omitempty"`
}

// CheckAuthResponse is the body of GET /check-auth.
type CheckAuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the failure body returned by the identity and catalog APIs.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
