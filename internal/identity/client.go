package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hongminglow/valide/internal/models"
	"github.com/hongminglow/valide/internal/models/dto"
)

// DefaultBaseURL is the hosted identity API.
const DefaultBaseURL = "https://validebackend.onrender.com/api"

// ErrUnauthorized matches APIErrors carrying 401 or 403.
var ErrUnauthorized = errors.New("unauthorized")

// ErrMissingToken indicates a successful response that carried no token.
var ErrMissingToken = errors.New("identity API returned no token")

// APIError is a non-2xx answer from the identity API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity API: %d %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match authentication failures.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// AuthResult is what a successful login or registration yields.
type AuthResult struct {
	Token string
	User  models.User
}

// Client talks to the remote identity API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the API rooted at baseURL. No request
// timeout is applied unless the caller's context or http.Client sets one.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (AuthResult, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &out); err != nil {
		return AuthResult{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return AuthResult{}, ErrMissingToken
	}
	return AuthResult{Token: out.Token, User: out.User}, nil
}

// Register creates an account and returns its first session token.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (AuthResult, error) {
	var out dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &out); err != nil {
		return AuthResult{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return AuthResult{}, ErrMissingToken
	}
	return AuthResult{Token: out.Token, User: out.Data}, nil
}

// CheckAuth asks whether token is still valid. A 401/403 answer is reported
// as (false, nil); other failures are returned as errors.
func (c *Client) CheckAuth(ctx context.Context, token string) (bool, error) {
	var out dto.CheckAuthResponse
	err := c.do(ctx, http.MethodGet, "/check-auth", token, nil, &out)
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return out.Success, nil
}

// Logout invalidates token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func errorMessage(status int, data []byte) string {
	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	return http.StatusText(status)
}
