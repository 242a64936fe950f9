package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the gateway sourced from env vars.
type Config struct {
	Port           string
	Env            string
	IdentityAPIURL string
	CatalogAPIURL  string
	DatabaseURL    string
	SessionSecret  string
	SessionIssuer  string
	SessionTTL     time.Duration
	CORSOrigins    []string
}

// devSecret signs cookies in dev when SESSION_SECRET is unset.
const devSecret = "valide-dev-session-secret"

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:           fallback(os.Getenv("PORT"), "8080"),
		Env:            fallback(os.Getenv("APP_ENV"), "dev"),
		IdentityAPIURL: strings.TrimSpace(os.Getenv("IDENTITY_API_URL")),
		CatalogAPIURL:  strings.TrimSpace(os.Getenv("CATALOG_API_URL")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SessionSecret:  strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionIssuer:  fallback(os.Getenv("SESSION_ISSUER"), "valide-gateway"),
		CORSOrigins:    parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	minutes := fallback(os.Getenv("SESSION_TTL_MINUTES"), "10080")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.SessionTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return Config{}, errors.New("SESSION_SECRET is required")
		}
		cfg.SessionSecret = devSecret
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the gateway runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
