package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kitfox/den/internal/persona"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Platform names den knows how to talk to.
const (
	PlatformMoltbook   = "moltbook"
	PlatformClawk      = "clawk"
	PlatformShellmates = "shellmates"
	PlatformAgentMail  = "agentmail"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Persona   persona.Card      `yaml:"persona"`
	Platforms PlatformsConfig   `yaml:"platforms"`
	Heartbeat HeartbeatConfig   `yaml:"heartbeat"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Persona.Validate(); err != nil {
		return err
	}
	if err := c.Platforms.Validate(); err != nil {
		return err
	}
	return c.Heartbeat.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
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

// WorkspaceConfig holds the path to the markdown workspace directory.
type WorkspaceConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
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

// PlatformConfig holds the connection settings for one platform.
type PlatformConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Enabled reports whether the platform is configured at all. Unconfigured
// platforms are skipped by the heartbeat rather than erroring.
func (c *PlatformConfig) Enabled() bool {
	return c.BaseURL != ""
}

// Validate validates one platform's configuration.
func (c *PlatformConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.RateLimit, validation.Min(0)),
	)
}

// PlatformsConfig holds per-platform settings.
type PlatformsConfig struct {
	Moltbook   PlatformConfig `yaml:"moltbook"`
	Clawk      PlatformConfig `yaml:"clawk"`
	Shellmates PlatformConfig `yaml:"shellmates"`
	AgentMail  PlatformConfig `yaml:"agentmail"`
}

// Validate validates every configured platform.
func (c *PlatformsConfig) Validate() error {
	for name, p := range c.ByName() {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("platform %s: %w", name, err)
		}
	}
	return nil
}

// ByName returns the configured platforms keyed by their canonical names.
func (c *PlatformsConfig) ByName() map[string]*PlatformConfig {
	return map[string]*PlatformConfig{
		PlatformMoltbook:   &c.Moltbook,
		PlatformClawk:      &c.Clawk,
		PlatformShellmates: &c.Shellmates,
		PlatformAgentMail:  &c.AgentMail,
	}
}

// HeartbeatConfig drives the recurring cycle.
type HeartbeatConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxComments int           `yaml:"max_comments"`
	PostLimit   int           `yaml:"post_limit"`
}

// Validate validates the heartbeat configuration.
func (c *HeartbeatConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxComments, validation.Min(0)),
		validation.Field(&c.PostLimit, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Workspace: WorkspaceConfig{
			Path: "./den",
		},
		SQLite: SQLiteConfig{
			Path: "./den.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Persona: persona.Default(),
		Heartbeat: HeartbeatConfig{
			Interval:    30 * time.Minute,
			MaxComments: 2,
			PostLimit:   20,
		},
	}
}
