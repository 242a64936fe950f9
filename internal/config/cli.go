package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hongminglow/valide/internal/models"
)

// CLI is the command-line client's configuration file.
type CLI struct {
	IdentityAPIURL string             `yaml:"identity_api_url"`
	CatalogAPIURL  string             `yaml:"catalog_api_url"`
	SessionFile    string             `yaml:"session_file"`
	Verbose        bool               `yaml:"verbose"`
	Address        models.Address     `yaml:"address"`
	Preferences    models.Preferences `yaml:"preferences"`
}

// DefaultCLIPath is where the CLI looks for its config when --config is not
// given: $VALIDE_CONFIG, then $XDG_CONFIG_HOME/valide/config.yaml, then
// ~/.config/valide/config.yaml.
func DefaultCLIPath() string {
	if p := strings.TrimSpace(os.Getenv("VALIDE_CONFIG")); p != "" {
		return p
	}
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "valide", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".valide", "config.yaml")
	}
	return filepath.Join(home, ".config", "valide", "config.yaml")
}

// LoadCLI reads the YAML file at path. A missing file yields the zero
// config unless required is set.
func LoadCLI(path string, required bool) (CLI, error) {
	var cfg CLI
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.IdentityAPIURL = strings.TrimSpace(cfg.IdentityAPIURL)
	cfg.CatalogAPIURL = strings.TrimSpace(cfg.CatalogAPIURL)
	cfg.SessionFile = strings.TrimSpace(cfg.SessionFile)
	return cfg, nil
}
