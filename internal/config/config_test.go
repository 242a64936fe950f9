package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "DATABASE_URL", "SESSION_SECRET", "SESSION_TTL_MINUTES", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddress() != ":8080" {
		t.Fatalf("address = %q", cfg.HTTPAddress())
	}
	if !cfg.IsDev() || cfg.SessionSecret == "" {
		t.Fatalf("dev defaults not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("ttl = %s", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without SESSION_SECRET")
	}

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL_MINUTES", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://valide.shop, ,https://admin.valide.shop")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("ttl = %s", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadCLI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `identity_api_url: " http://localhost:5000/api "
session_file: /tmp/valide.json
address:
  city: Paris
  postal_code: "75001"
preferences:
  currency: EUR
  email:
    orders: true
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadCLI(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IdentityAPIURL != "http://localhost:5000/api" {
		t.Fatalf("identity url = %q", cfg.IdentityAPIURL)
	}
	if cfg.Address.City != "Paris" || cfg.Address.PostalCode != "75001" {
		t.Fatalf("address = %+v", cfg.Address)
	}
	if cfg.Preferences.Currency != "EUR" || !cfg.Preferences.Email.Orders {
		t.Fatalf("preferences = %+v", cfg.Preferences)
	}
}

func TestLoadCLIMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := LoadCLI(path, false); err != nil {
		t.Fatalf("optional config: %v", err)
	}
	if _, err := LoadCLI(path, true); err == nil {
		t.Fatal("expected an error for a required missing config")
	}
}

func TestDefaultCLIPath(t *testing.T) {
	t.Setenv("VALIDE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultCLIPath(); got != filepath.Join("/xdg", "valide", "config.yaml") {
		t.Fatalf("path = %q", got)
	}
	t.Setenv("VALIDE_CONFIG", "/etc/valide.yaml")
	if got := DefaultCLIPath(); got != "/etc/valide.yaml" {
		t.Fatalf("path = %q", got)
	}
}
