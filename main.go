package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ManojkumarBalini/screenrec/internal/config"
	"github.com/ManojkumarBalini/screenrec/internal/recordings"
	"github.com/ManojkumarBalini/screenrec/internal/server"
)

func main() {
	// Load .env if present (ignored in environments that configure via real env vars)
	_ = godotenv.Load()

	// Parse command-line flags (can override env vars)
	port := flag.Int("port", config.DefaultPort, "Port to listen on")
	env := flag.String("env", config.DefaultEnv, "Deployment mode: development or production")
	flag.Parse()

	// Load configuration (env vars + flag overrides)
	cfg, err := config.LoadWithFlags(*port, *env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error:\n%v\n\nSee .env.example for configuration options.\n", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	app, err := server.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Reconcile metadata rows against stored files, once at startup and then
	// periodically when an interval is configured.
	sweepRoot := ""
	if cfg.StorageBackend == "local" {
		sweepRoot = cfg.UploadDir
	}
	sweeper := recordings.NewSweeper(app.DB, app.Store, sweepRoot, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: app.Handler(),
		// Uploads and video streams are long-lived transfers; only the
		// header read is bounded.
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// setupLogger configures the default slog logger: JSON output in production,
// human-readable text in development.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
