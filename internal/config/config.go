// Package config resolves the credentials and persisted settings of the
// command-line tools. The extension config lives under a fixed "iqm"
// namespace in the user config directory; an auth-server tokens file can
// be supplied through the TKET_IQM_TOKENS_FILE environment variable and
// takes part in the resolution order explicit flag, persisted config,
// tokens file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Namespace keys the extension's section of the persisted configuration.
const Namespace = "iqm"

// EnvTokensFile names the environment variable pointing at an
// auth-server tokens file.
const EnvTokensFile = "TKET_IQM_TOKENS_FILE"

// ErrNoCredentials means no token could be resolved from any source.
var ErrNoCredentials = errors.New("no access token resolved")

// Config is the persisted per-extension configuration.
type Config struct {
	APIToken string `yaml:"api_token,omitempty"`
}

// tokensFile is the relevant slice of an auth-server tokens file.
type tokensFile struct {
	AccessToken string `yaml:"access_token"`
}

// Dir returns the directory holding the persisted config file. It
// honours TKET_IQM_CONFIG_DIR so tests can redirect it.
func Dir() (string, error) {
	if dir := os.Getenv("TKET_IQM_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "tket-"+Namespace), nil
}

// Path returns the persisted config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the persisted config. A missing file is an empty config,
// not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the persisted config, creating the directory if needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// loadTokensFile reads an auth-server tokens file and returns its access
// token.
func loadTokensFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read tokens file %s: %w", path, err)
	}
	var tf tokensFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return "", fmt.Errorf("parse tokens file %s: %w", path, err)
	}
	if tf.AccessToken == "" {
		return "", fmt.Errorf("tokens file %s has no access_token", path)
	}
	return tf.AccessToken, nil
}

// ResolveToken resolves an access token: the explicit value wins, then
// the persisted config, then a tokens file named by TKET_IQM_TOKENS_FILE.
// ErrNoCredentials is returned when every source is empty.
func ResolveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.APIToken != "" {
		return cfg.APIToken, nil
	}
	if path := os.Getenv(EnvTokensFile); path != "" {
		return loadTokensFile(path)
	}
	return "", ErrNoCredentials
}
