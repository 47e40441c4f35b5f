/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the settlement engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (config.toml + SETTLE_* env), then apply flags
  2. Build the zap logger
  3. Open run history (SQLite, or memory when no path is set)
  4. Start the retention scheduler
  5. Configure HTTP router and start serving

COMMAND-LINE FLAGS:
  -config  Explicit TOML config file (default: search . and /etc/settlement)
  -port    HTTP server port, overrides app.port
  -db      SQLite database path, overrides database.path
           Use ":memory:" for an in-memory SQLite database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (http.shutdown_timeout)
  3. Stop the retention scheduler
  4. Close database connection

EXAMPLES:
  ./server -db="./data/runs.db"
  SETTLE_LOG_FORMAT=json ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/settlement-engine/api"
	"github.com/warp/settlement-engine/config"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/generic/store"
	"github.com/warp/settlement-engine/logger"
	"github.com/warp/settlement-engine/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "TOML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.App.Port = fmt.Sprint(*port)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	// Initialize store
	runs, closeStore, err := openStore(cfg.Database.Path)
	if err != nil {
		log.Fatal("failed to initialize run history", zap.Error(err))
	}
	defer closeStore()

	// Retention
	scheduler := api.NewRetentionScheduler(runs, log)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = cfg.Scheduler.CheckInterval
	scheduler.Retention = cfg.Scheduler.Retention
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handler and router
	handler := api.NewHandler(runs, log)
	handler.MaxBodySize = cfg.HTTP.MaxBodySize
	router := api.NewRouter(handler, cfg.HTTP.CORSAllowOrigins)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openStore returns SQLite when a path is configured and memory otherwise.
func openStore(path string) (generic.RunStore, func(), error) {
	if path == "" {
		return store.NewMemory(), func() {}, nil
	}
	s, err := sqlite.New(path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
