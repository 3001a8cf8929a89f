// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/finsight and cmd/finsight-watch.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/api"
	"finsight/internal/backend"
	"finsight/internal/config"
	"finsight/internal/log"
	"finsight/internal/session"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend creates the session persistence backend selected by config.
// Returns the backend or exits the process on failure.
func InitBackend(ctx context.Context, logger *slog.Logger, cfg *config.Config) *backend.Result {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize session backend", "error", err, "type", bcfg.Type)
		os.Exit(1)
	}
	return result
}

// EstablishSession restores a persisted session or, failing that, logs in
// with the configured credentials. A restored token is checked against the
// server; a rejected one falls through to a fresh login. Returns the
// authenticated user or exits the process when neither path yields a session.
func EstablishSession(ctx context.Context, logger *slog.Logger, cfg *config.Config, sessions *session.Store) api.User {
	if sessions.Restore(ctx) {
		user, err := sessions.Verify(ctx)
		if err == nil {
			return user
		}
		if errors.Is(err, api.ErrAuthentication) {
			logger.Warn("Persisted session rejected by server, logging in again", "error", err)
			sessions.Logout(ctx)
		} else {
			// Server unreachable; keep the restored session and let the
			// views surface the failure.
			logger.Warn("Could not verify persisted session", "error", err)
			user, _ := sessions.User()
			return user
		}
	}

	if cfg.Username == "" || cfg.Password == "" {
		logger.Error("No persisted session and no credentials configured; set FINSIGHT_USERNAME and FINSIGHT_PASSWORD")
		os.Exit(1)
	}

	result, err := sessions.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		if errors.Is(err, api.ErrAuthentication) {
			logger.Error("Login rejected", "error", err, "username", cfg.Username)
		} else {
			logger.Error("Login failed", "error", err)
		}
		os.Exit(1)
	}
	if result.DemoSeeded {
		logger.Info("Demo data generated for first login")
	}

	user, _ := sessions.User()
	return user
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
