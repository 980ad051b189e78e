package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/edupredict/internal/adapters/http/api"
	"github.com/okian/edupredict/internal/adapters/http/site"
	"github.com/okian/edupredict/internal/adapters/http/swagger"
	app "github.com/okian/edupredict/internal/app"
	"github.com/okian/edupredict/internal/config"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/okian/edupredict/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration and the classifier, then serves until ctx ends.
// Any startup failure is returned before the listener opens.
func run(ctx context.Context) error {
	// Initialize logging
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Re-initialize with the configured output
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithFile(cfg.LogFile)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	tag, err := cfg.LanguageTag()
	if err != nil {
		return fmt.Errorf("failed to parse language: %w", err)
	}

	// Load the classifier once; the process never serves without it.
	svc := app.New(
		app.WithLogger(loggerInstance.Named("service")),
		app.WithModelPath(cfg.ModelPath),
		app.WithLanguage(tag),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("model", cfg.ModelPath),
			logger.String("routes", describeRoutes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newMux registers the docs, the API and the form on a fresh mux.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// Register ReDoc under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, api.WithMaxBodyBytes(cfg.MaxBodyBytes))
	apiServer.Register(ctx, mux)

	// Everything else is the embedded form.
	site.Register(ctx, mux)

	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	updateSystemMetrics()

	ticker := time.NewTicker(systemMetricsInterval) // Update every 10 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// describeRoutes lists the routes newMux serves, for the startup log.
func describeRoutes() string {
	return strings.Join([]string{
		"POST /predict", "GET /features", "GET /stats", "GET /healthz",
		"GET /dashboard", "GET /api-docs", "GET /openapi.yaml", "GET /",
	}, ", ")
}
