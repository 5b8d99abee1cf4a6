package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docpress/internal/metadata"
	"github.com/starford/docpress/internal/reconcile"
	"github.com/starford/docpress/internal/watch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Source  SourceConfig      `yaml:"source"`
	Output  OutputConfig      `yaml:"output"`
	Journal JournalConfig     `yaml:"journal"`
	Watch   WatchConfig       `yaml:"watch"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return c.Auth.Validate()
}

// ReconcileOptions maps the configuration onto reconciler options.
func (c *Config) ReconcileOptions(dryRun bool) reconcile.Options {
	return reconcile.Options{
		DryRun:         dryRun,
		SourceExt:      c.Source.Extension,
		TempPrefix:     c.Source.TempPrefix,
		Format:         c.Output.Format,
		Layout:         c.Output.Layout,
		PruneOnFailure: c.Output.PruneOnFailure,
	}
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

// SourceConfig describes the directory of source documents.
type SourceConfig struct {
	Path       string `yaml:"path"`
	Extension  string `yaml:"extension"`
	TempPrefix string `yaml:"temp_prefix"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.By(dotPrefixed)),
	)
}

// OutputConfig describes the directory of generated posts.
//
// Format is "html" (default) or "markdown". Layout is written into every
// post's front matter. PruneOnFailure deletes orphaned posts even when a
// source document failed in the same pass.
type OutputConfig struct {
	Path           string `yaml:"path"`
	Format         string `yaml:"format"`
	Layout         string `yaml:"layout"`
	PruneOnFailure bool   `yaml:"prune_on_failure"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.In(reconcile.FormatHTML, reconcile.FormatMarkdown)),
		validation.Field(&c.Layout, validation.Required),
	)
}

// JournalConfig holds the run journal location. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether passes are journaled.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// WatchConfig controls continuous mode.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(10*time.Millisecond)),
	)
}

// AuthConfig holds authentication configuration for the preview server.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

func dotPrefixed(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") {
		return errors.New("must start with a dot")
	}
	return nil
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
		Source: SourceConfig{
			Extension:  reconcile.DefaultSourceExt,
			TempPrefix: reconcile.DefaultTempPrefix,
		},
		Output: OutputConfig{
			Format: reconcile.FormatHTML,
			Layout: metadata.DefaultLayout,
		},
		Watch: WatchConfig{
			Debounce: watch.DefaultDebounce,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
