// Package server provides the HTTP handler assembly for the recording service.
// It accepts all dependencies as parameters so that both main() and tests
// can build the same handler chain without route drift.
package server

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManojkumarBalini/screenrec/internal/config"
	"github.com/ManojkumarBalini/screenrec/internal/db"
	"github.com/ManojkumarBalini/screenrec/internal/diagnostics"
	"github.com/ManojkumarBalini/screenrec/internal/middleware"
	"github.com/ManojkumarBalini/screenrec/internal/recordings"
)

// App holds all dependencies needed to build the HTTP handler.
type App struct {
	DB            *db.DB
	Store         recordings.RecordingStore
	RateLimiter   *middleware.RateLimiter // nil disables rate limiting
	DiagCollector *diagnostics.Collector
	Config        *config.Config
}

// New opens the metadata database and the recording store selected by cfg
// and returns an assembled App. Close releases the database handle.
func New(cfg *config.Config) (*App, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	app := &App{
		DB:            database,
		Store:         store,
		DiagCollector: diagnostics.NewCollector(database, cfg, time.Now()),
		Config:        cfg,
	}
	if cfg.RateLimit > 0 {
		app.RateLimiter = middleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return app, nil
}

// newStore builds the recording store selected by the configuration.
func newStore(cfg *config.Config) (recordings.RecordingStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		store, err := recordings.NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint,
			cfg.S3Prefix, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 store: %w", err)
		}
		return store, nil
	default:
		return recordings.NewLocalStore(cfg.UploadDir), nil
	}
}

// Close releases resources held by the App.
func (a *App) Close() error {
	return a.DB.Close()
}

// Handler builds and returns the complete HTTP handler with all routes
// registered and middleware applied.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	// Bind the handlers package to this App's dependencies.
	h := &handlers{app: a}

	// Observability endpoints
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/readyz", h.handleReadyz)
	mux.HandleFunc("/api/diagnostics", h.handleDiagnostics)

	// Recording API
	recHandler := recordings.NewHandler(a.DB, a.Store, a.Config)
	mux.Handle("/api/recordings", recHandler)
	mux.Handle("/api/recordings/", recHandler)

	// Wrap with middleware
	var handler http.Handler = mux
	if a.RateLimiter != nil {
		handler = a.RateLimiter.Middleware(handler)
	}
	handler = middleware.CORS(a.Config.AllowedOrigin)(handler)
	return middleware.SecurityHeaders(middleware.RequestID(handler))
}
