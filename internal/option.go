package internal

import (
	"errors"
	"log/slog"
	"os"

	"github.com/starford/pagewright/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	source storage.Storage
	output storage.Storage
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON logger built from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithSource reads documents from st instead of the configured source storage.
func WithSource(st storage.Storage) Option {
	return func(a *application) {
		a.source = st
	}
}

// WithOutput writes pages to st instead of the configured output storage.
func WithOutput(st storage.Storage) Option {
	return func(a *application) {
		a.output = st
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errConfigRequired
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	return app, nil
}
