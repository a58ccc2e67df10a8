package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/artpar/mingalaroo/internal/core/auth"
	"github.com/artpar/mingalaroo/internal/shell/api"
	"github.com/artpar/mingalaroo/internal/shell/api/middleware"
	"github.com/artpar/mingalaroo/internal/shell/store"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitHTTPServerError = 4
)

// =============================================================================
// Server
// =============================================================================

// Server represents the Mingalaroo application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	mode, err := auth.ParseMode(cfg.Auth.Mode)
	if err != nil {
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitConfigError}
	}

	if isSQLite(cfg.Database.Driver) {
		if err := ensureDataDir(cfg.Database.DSN); err != nil {
			return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitDatabaseError}
		}
	}

	// Connect to database
	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDatabaseError,
		}
	}
	logger.Info("database ready", "driver", cfg.Database.Driver)

	links := cfg.Links.Builder()
	if !links.OwnerScoped() {
		logger.Warn("invitation links use a fixed segment; RSVP matching is not scoped to an organizer",
			"segment", links.FixedSegment)
	}

	handler := api.NewHandler(api.Config{
		Store: s,
		Links: links,
		Auth: middleware.AuthConfig{
			Mode:         mode,
			SharedSecret: cfg.Auth.SharedSecret,
			JWTSecret:    cfg.Auth.JWTSecret,
			DevOwner:     cfg.Auth.DevOwner,
			Logger:       logger,
		},
		RSVPLimit: middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RSVP.RequestsPerWindow,
			Window:            cfg.RSVP.Window,
			Burst:             cfg.RSVP.Burst,
		},
		PageSize:  cfg.Dashboard.PageSize,
		QRSize:    cfg.Dashboard.QRSize,
		ServerURL: cfg.Server.PublicURL,
		Logger:    logger,
	})

	if mode == auth.ModeDev {
		logger.Warn("dev auth mode: every request acts as the dev owner", "owner_id", cfg.Auth.DevOwner)
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		logger:     logger,
	}, nil
}

// ensureDataDir creates the directory holding a SQLite database file.
func ensureDataDir(dsn string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.store.Close()
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	// Close database
	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
