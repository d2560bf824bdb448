package factory

import (
	"io"
	"log/slog"

	"chessroom/internal/dependencies/clock"
	"chessroom/internal/dependencies/random"
	"chessroom/internal/services/registry"
	"chessroom/internal/services/session"
	"chessroom/internal/storage"
	"chessroom/internal/storage/memory"
	"chessroom/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry       *registry.Registry
	SessionManager *session.Manager

	// Transport
	Transport *ws.Transport
	WSHandler *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// SessionConfig holds session manager settings (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired. State lives
// entirely in process memory and is discarded on shutdown.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	sessionCfg := cfg.SessionConfig
	if sessionCfg.ColorPolicy == "" {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(memory.New(), clock.New(), random.New(), sessionCfg, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, sessionCfg session.Config, logger *slog.Logger) *App {
	reg := registry.New(store, clk, logger)
	transport := ws.NewTransport(logger)
	manager := session.NewManager(store, reg, transport, clk, rnd, sessionCfg, logger)
	handler := ws.NewHandler(manager, transport, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Registry:       reg,
		SessionManager: manager,
		Transport:      transport,
		WSHandler:      handler,
	}
}
