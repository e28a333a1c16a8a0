// Package testutil provides helpers for integration tests.
package testutil

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManojkumarBalini/screenrec/internal/config"
	"github.com/ManojkumarBalini/screenrec/internal/db"
	"github.com/ManojkumarBalini/screenrec/internal/diagnostics"
	"github.com/ManojkumarBalini/screenrec/internal/recordings"
	"github.com/ManojkumarBalini/screenrec/internal/server"
)

// TestServer wraps an httptest.Server with test-specific helpers.
type TestServer struct {
	// Server is the underlying httptest.Server.
	Server *httptest.Server
	// URL is the base URL of the test server (e.g. "http://127.0.0.1:12345").
	URL string
	// DB is the metadata database.
	DB *db.DB
	// Store is the local content store.
	Store *recordings.LocalStore
	// Config is the test configuration.
	Config *config.Config
}

// Option is a function that modifies the test config before server creation.
type Option func(*config.Config)

// WithMaxUploadSize caps uploads at n bytes.
func WithMaxUploadSize(n int64) Option {
	return func(c *config.Config) { c.MaxUploadSize = n }
}

// WithAllowedOrigin enables CORS for the given comma-separated origin list.
func WithAllowedOrigin(origins string) Option {
	return func(c *config.Config) { c.AllowedOrigin = origins }
}

// NewTestServer creates a fully wired test server with:
//   - Fresh temp-file SQLite database
//   - Local content store rooted in a temp directory
//   - All routes registered via server.App.Handler()
//
// Rate limiting is left disabled so bursts of test requests are never
// throttled. The server is automatically cleaned up when the test completes.
// Optional Option functions can modify the config before the server is built.
func NewTestServer(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	// Open a temp-file SQLite database. We cannot use ":memory:" directly
	// because the sql.DB pool opens multiple connections, and each in-memory
	// connection would get its own empty database.
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	cfg := &config.Config{
		Port:           0,
		Env:            "development",
		DBPath:         dbPath,
		UploadDir:      filepath.Join(tmpDir, "uploads"),
		MaxUploadSize:  10 * 1024 * 1024,
		StorageBackend: "local",
	}

	// Apply custom options before building the server
	for _, opt := range opts {
		opt(cfg)
	}

	store := recordings.NewLocalStore(cfg.UploadDir)

	app := &server.App{
		DB:            database,
		Store:         store,
		DiagCollector: diagnostics.NewCollector(database, cfg, time.Now()),
		Config:        cfg,
	}

	ts := httptest.NewServer(app.Handler())

	t.Cleanup(func() {
		ts.Close()
		database.Close()
	})

	return &TestServer{
		Server: ts,
		URL:    ts.URL,
		DB:     database,
		Store:  store,
		Config: cfg,
	}
}
