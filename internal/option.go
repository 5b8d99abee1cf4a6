package internal

import (
	"io"

	"github.com/starford/docpress/internal/reconcile"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	dryRun   bool
	version  string
	logOut   io.Writer
	onReport func(*reconcile.Report, error)
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithDryRun reports what a pass would do without touching the output directory.
func WithDryRun(dryRun bool) Option {
	return func(a *application) {
		a.dryRun = dryRun
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogOutput redirects log output. Defaults differ per entry point.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithReportHandler is called after every pass Sync runs, including each
// pass triggered in watch mode.
func WithReportHandler(fn func(*reconcile.Report, error)) Option {
	return func(a *application) {
		a.onReport = fn
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errConfigRequired
	}
	return app, nil
}
