package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Auth modes for GitHub requests.
const (
	AuthModeBasic = "basic"
	AuthModeApp   = "app"
)

const (
	DefaultAPIURL  = "https://api.github.com/"
	DefaultPerPage = 100
	DefaultTimeout = "30s"
	DefaultScope   = "ghcomment"
	DefaultLogID   = "ghcomment"
)

// Local log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the full ghcomment configuration
type Config struct {
	GitHub      GitHubConfig      `mapstructure:"github"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	GCP         GCPConfig         `mapstructure:"gcp"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// GitHubConfig contains API endpoint and authentication settings
type GitHubConfig struct {
	APIURL   string `mapstructure:"api_url"`
	PerPage  int    `mapstructure:"per_page"`
	Timeout  string `mapstructure:"timeout"`
	AuthMode string `mapstructure:"auth_mode"` // basic or app

	// GitHub App settings, used when AuthMode is "app"
	AppID            int64  `mapstructure:"app_id"`
	InstallationID   int64  `mapstructure:"installation_id"`
	PrivateKeySecret string `mapstructure:"private_key_secret"` // Secret Manager path
	PrivateKeyPath   string `mapstructure:"private_key_path"`   // local PEM file
}

// CredentialsConfig locates the persisted username and password
type CredentialsConfig struct {
	Path           string `mapstructure:"path"`
	Scope          string `mapstructure:"scope"`
	PasswordSecret string `mapstructure:"password_secret"` // Secret Manager path overriding the stored password
}

// GCPConfig contains Google Cloud settings shared by Secret Manager and Cloud Logging
type GCPConfig struct {
	Project string `mapstructure:"project"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Format string `mapstructure:"format"` // text or json, for --verbose output
	Cloud  bool   `mapstructure:"cloud"`  // send structured entries to Cloud Logging
	LogID  string `mapstructure:"log_id"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.GitHub.APIURL == "" {
		cfg.GitHub.APIURL = DefaultAPIURL
	}

	if cfg.GitHub.PerPage == 0 {
		cfg.GitHub.PerPage = DefaultPerPage
	}

	if cfg.GitHub.Timeout == "" {
		cfg.GitHub.Timeout = DefaultTimeout
	}

	if cfg.GitHub.AuthMode == "" {
		cfg.GitHub.AuthMode = AuthModeBasic
	}

	if cfg.Credentials.Scope == "" {
		cfg.Credentials.Scope = DefaultScope
	}

	if cfg.Credentials.Path == "" {
		cfg.Credentials.Path = DefaultCredentialsPath()
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}

	if cfg.Logging.LogID == "" {
		cfg.Logging.LogID = DefaultLogID
	}
}

// DefaultCredentialsPath returns the credential database location under the
// user's config directory, falling back to the working directory.
func DefaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".ghcomment", "credentials.db")
	}
	return filepath.Join(dir, "ghcomment", "credentials.db")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("invalid per_page: %d (must be between 1 and 100)", c.GitHub.PerPage)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	switch c.GitHub.AuthMode {
	case AuthModeBasic:
	case AuthModeApp:
		if c.GitHub.AppID == 0 {
			return fmt.Errorf("GitHub App ID is required")
		}
		if c.GitHub.InstallationID == 0 {
			return fmt.Errorf("GitHub App Installation ID is required")
		}
		if c.GitHub.PrivateKeySecret == "" && c.GitHub.PrivateKeyPath == "" {
			return fmt.Errorf("GitHub App private key secret or path is required")
		}
	default:
		return fmt.Errorf("invalid auth_mode: %s (must be basic or app)", c.GitHub.AuthMode)
	}

	if c.Logging.Format != LogFormatText && c.Logging.Format != LogFormatJSON {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", c.Logging.Format)
	}

	if c.Logging.Cloud && c.GCP.Project == "" {
		return fmt.Errorf("gcp project is required when cloud logging is enabled")
	}

	return nil
}

// Timeout returns the parsed HTTP timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.GitHub.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout: %s (must not be negative)", c.GitHub.Timeout)
	}
	return d, nil
}

// NeedsSecretManager reports whether any setting is resolved through Secret Manager.
func (c *Config) NeedsSecretManager() bool {
	if c.Credentials.PasswordSecret != "" {
		return true
	}
	return c.GitHub.AuthMode == AuthModeApp && c.GitHub.PrivateKeySecret != ""
}
