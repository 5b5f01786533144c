package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakhrymubarak/weather-dashboard/internal/config"
	"github.com/fakhrymubarak/weather-dashboard/internal/server"
	"github.com/fakhrymubarak/weather-dashboard/internal/telemetry"
)

// buildServer wires the application. The returned func releases what the
// server holds once it has shut down.
func buildServer(ctx context.Context, cfg config.Config) (*http.Server, func() error, error) {
	deps, err := server.NewDeps(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	deps.RateLimiter.StartCleanup(ctx)
	deps.Registry.StartCleanup(ctx)
	return server.NewHTTPServer(cfg, server.NewRouter(deps)), deps.Close, nil
}

func main() {
	logger := config.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.APIKey == "" {
		// Lookups report the configuration error to the user; the server still starts.
		logger.Warnw("OPENWEATHERMAP_API_KEY is not set")
	}

	shutdownTracing, err := telemetry.InitProvider(ctx, cfg.OtelServiceName, cfg.OtelCollectorURL)
	if err != nil {
		logger.Fatalw("Failed to initialize tracing", "error", err)
	}

	srv, closeDeps, err := buildServer(ctx, cfg)
	if err != nil {
		logger.Fatalw("Failed to build server", "error", err)
	}
	defer closeDeps()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Weather dashboard server running", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Errorw("Server failed", "error", err)
	case <-ctx.Done():
		logger.Infow("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorw("Tracing shutdown failed", "error", err)
	}
}
