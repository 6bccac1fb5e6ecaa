package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pagewright/internal/pipeline"
	"github.com/starford/pagewright/internal/storage/s3store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage kinds.
const (
	StorageLocal  = "local"
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageS3     = "s3"
)

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9._-]+$`)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Source SourceConfig      `yaml:"source"`
	Output OutputConfig      `yaml:"output"`
	Build  BuildConfig       `yaml:"build"`
	Auth   AuthConfig        `yaml:"auth"`
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
	return c.Auth.Validate()
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

// StorageConfig selects and configures a storage backend.
type StorageConfig struct {
	Kind string `yaml:"kind"`
	// Root is the directory of a local storage.
	Root   string         `yaml:"root"`
	SQLite SQLiteConfig   `yaml:"sqlite"`
	S3     s3store.Config `yaml:"s3"`
	// Files seeds a memory storage.
	Files map[string]string `yaml:"files"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Kind, validation.Required, validation.In(StorageLocal, StorageMemory, StorageSQLite, StorageS3)),
		validation.Field(&c.Root, validation.When(c.Kind == StorageLocal, validation.Required)),
	); err != nil {
		return err
	}
	switch c.Kind {
	case StorageSQLite:
		return c.SQLite.Validate()
	case StorageS3:
		if err := c.S3.Validate(); err != nil {
			return fmt.Errorf("s3: %w", err)
		}
	}
	return nil
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

// SourceConfig describes where documents are read from.
type SourceConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Cwd     string        `yaml:"cwd"`
	Pattern []string      `yaml:"pattern"`
	Ignore  []string      `yaml:"ignore"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Cwd, validation.Required),
		validation.Field(&c.Pattern, validation.Each(validation.Required)),
		validation.Field(&c.Ignore, validation.Each(validation.Required)),
	)
}

// OutputConfig describes where rendered pages are written.
type OutputConfig struct {
	Storage   StorageConfig `yaml:"storage"`
	Cwd       string        `yaml:"cwd"`
	Extension string        `yaml:"extension"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Cwd, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Match(extensionPattern)),
	)
}

// BuildConfig controls a build run.
type BuildConfig struct {
	// ContinueOnError logs and counts failed documents instead of aborting.
	ContinueOnError bool `yaml:"continue_on_error"`
}

// AuthConfig protects the preview server.
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
			Storage: StorageConfig{Kind: StorageLocal, Root: "."},
			Cwd:     pipeline.DefaultReadCwd,
		},
		Output: OutputConfig{
			Storage:   StorageConfig{Kind: StorageLocal, Root: "."},
			Cwd:       pipeline.DefaultWriteCwd,
			Extension: pipeline.DefaultExtension,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
