// Package notefold is the application layer: configuration, CLI command
// parsing, the HTTP server, and its request handlers.
package notefold

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/notefold/notefold/pkg/store"
	"github.com/notefold/notefold/pkg/store/memory"
	"github.com/notefold/notefold/pkg/store/postgres"
	surrealstore "github.com/notefold/notefold/pkg/store/surrealdb"
)

// Config holds application configuration.
type Config struct {
	// Database configuration
	PostgresDSN   string
	SurrealDBURL  string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string

	// Backend selection. At most one is set; with none the app serves
	// the unconfigured placeholder store.
	Postgres bool
	Surreal  bool
	Memory   bool

	// ReadOnly rejects all write operations when true.
	ReadOnly bool

	// Server configuration
	ServerPort string
}

// App holds the application state.
type App struct {
	store    store.Store
	config   *Config
	log      zerolog.Logger
	readOnly bool
}

// New creates a new application instance, connecting the configured
// backend and wrapping it with read-only protection.
func New(config *Config) (*App, error) {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "notefold").Logger()

	var appStore store.Store
	var err error

	switch {
	case config.Surreal:
		appStore, err = surrealstore.NewSurrealStore(
			config.SurrealDBURL,
			config.SurrealDBNS,
			config.SurrealDBDB,
			config.SurrealDBUser,
			config.SurrealDBPass,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		log.Info().Str("backend", "surrealdb").Msg("connected")
	case config.Postgres:
		appStore, err = postgres.NewPostgresStore(config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Info().Str("backend", "postgres").Msg("connected")
	case config.Memory:
		appStore = memory.NewStore()
		log.Info().Str("backend", "memory").Msg("using in-memory store")
	default:
		appStore = store.NewUnconfigured()
		log.Warn().Msg("no backend configured; reads are empty and writes report service unavailable")
	}

	app := &App{
		config:   config,
		log:      log,
		readOnly: config.ReadOnly,
	}
	app.store = store.NewReadOnlyStore(appStore, app.IsReadOnly)

	return app, nil
}

// Close closes the application and its resources
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Store returns the underlying store (useful for testing)
func (a *App) Store() store.Store {
	return a.store
}

// SetReadOnly toggles the runtime read-only state. The wrapper consults it
// on every write, so the change takes effect without a restart.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly = readOnly
	a.log.Info().Bool("read_only", readOnly).Msg("read-only mode changed")
}

// IsReadOnly reports whether write operations are currently rejected.
func (a *App) IsReadOnly() bool {
	return a.readOnly
}

// getEnv retrieves an environment variable value with a fallback default.
// Empty variables are treated the same as unset ones.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
