package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Inbox  InboxConfig       `yaml:"inbox"`
	Cloud  CloudConfig       `yaml:"cloud"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Inbox.Validate(); err != nil {
		return err
	}
	if err := c.Cloud.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel    slog.Level `yaml:"log_level"`
	HTTP        HTTPConfig `yaml:"http"`
	CORSOrigins []string   `yaml:"cors_origins"`
	Seed        bool       `yaml:"seed"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// InboxConfig holds the drop-directory watcher configuration. When Path is
// empty the watcher is not started.
type InboxConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	return nil
}

// Enabled reports whether the inbox watcher should run.
func (c *InboxConfig) Enabled() bool {
	return c.Path != ""
}

// CloudConfig holds the backup provider configuration. When AppKey is empty
// no provider is wired and the cloud endpoints report 501.
type CloudConfig struct {
	Provider    string `yaml:"provider"`
	AppKey      string `yaml:"app_key"`
	RedirectURI string `yaml:"redirect_uri"`
}

// Validate validates the cloud configuration.
func (c *CloudConfig) Validate() error {
	if c.AppKey == "" {
		return nil
	}
	if c.Provider == "" {
		c.Provider = "dropbox"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In("dropbox")),
		validation.Field(&c.RedirectURI, validation.Required),
	)
}

// Enabled reports whether a cloud provider should be wired.
func (c *CloudConfig) Enabled() bool {
	return c.AppKey != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Seed: true,
		},
		SQLite: SQLiteConfig{
			Path: "./laguz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
