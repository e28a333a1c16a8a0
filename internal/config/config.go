// Package config provides centralized configuration management for the
// recording service. Configuration is loaded from environment variables with
// sensible defaults. Invalid configuration causes the application to fail
// fast with helpful error messages.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Port int
	Env  string // "development" or "production"

	// CORS configuration
	AllowedOrigin string // origin allowed to call the API ("" = CORS disabled)

	// Storage configuration
	DBPath        string // SQLite file path
	UploadDir     string // local content directory for recording files
	MaxUploadSize int64  // maximum recording file size in bytes

	StorageBackend    string // "local" (default) or "s3"
	S3Bucket          string // S3 bucket name
	S3Region          string // AWS region
	S3Endpoint        string // custom endpoint for MinIO/self-hosted S3
	S3Prefix          string // key prefix within bucket
	S3AccessKeyID     string // explicit AWS access key ID (optional)
	S3SecretAccessKey string // explicit AWS secret access key (optional)

	// Rate limiting
	RateLimit float64 // requests per second per IP (0 = disabled)
	RateBurst int     // maximum burst size for rate limiter

	// Reconciliation sweep
	SweepInterval time.Duration // 0 = run once at startup only
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Default values
const (
	DefaultPort           = 5000
	DefaultEnv            = "development"
	DefaultMaxUploadSize  = int64(100 * 1024 * 1024) // 100 MiB
	DefaultStorageBackend = "local"
	DefaultS3Region       = "us-east-1"
	DefaultS3Prefix       = "recordings/"
	DefaultRateLimit      = float64(10) // 10 requests/sec per IP
	DefaultRateBurst      = 20          // burst of 20

	// Mode-dependent defaults, applied when the corresponding variable is unset.
	DevAllowedOrigin = "http://localhost:3000"
	DevUploadDir     = "./uploads"
	DevDBPath        = "./screenrec.db"
	ProdUploadDir    = "/var/lib/screenrec/uploads"
	ProdDBPath       = "/var/lib/screenrec/screenrec.db"
)

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional values and validates the configuration.
// Returns an error if validation fails.
func Load() (*Config, error) {
	return LoadWithFlags(0, "")
}

// LoadWithFlags loads configuration from environment variables, then applies
// command-line flag overrides (only non-default flag values take effect).
// Mode-dependent defaults are resolved after the overrides so a flag-selected
// mode picks up its own paths.
func LoadWithFlags(port int, env string) (*Config, error) {
	cfg := &Config{
		Port:           DefaultPort,
		Env:            DefaultEnv,
		MaxUploadSize:  DefaultMaxUploadSize,
		StorageBackend: DefaultStorageBackend,
		S3Region:       DefaultS3Region,
		S3Prefix:       DefaultS3Prefix,
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if port != 0 && port != DefaultPort {
		cfg.Port = port
	}
	if env != "" && env != DefaultEnv {
		cfg.Env = env
	}

	cfg.applyModeDefaults()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return cfg, nil
}

// loadFromEnv populates the config from environment variables.
func (c *Config) loadFromEnv() error {
	var parseErrors ValidationErrors

	// Server configuration
	if v := os.Getenv("SCREENREC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_PORT",
				Message: fmt.Sprintf("invalid port number: %q (must be an integer)", v),
			})
		} else {
			c.Port = port
		}
	}

	if v := os.Getenv("SCREENREC_ENV"); v != "" {
		c.Env = v
	}

	// CORS configuration
	if v := os.Getenv("SCREENREC_ALLOWED_ORIGIN"); v != "" {
		c.AllowedOrigin = v
	}

	// Storage configuration
	if v := os.Getenv("SCREENREC_DB"); v != "" {
		c.DBPath = v
	}

	if v := os.Getenv("SCREENREC_UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}

	if v := os.Getenv("SCREENREC_MAX_UPLOAD_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_MAX_UPLOAD_SIZE",
				Message: fmt.Sprintf("invalid size: %q (must be an integer representing bytes)", v),
			})
		} else if size <= 0 {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_MAX_UPLOAD_SIZE",
				Message: fmt.Sprintf("size must be positive: %d", size),
			})
		} else {
			c.MaxUploadSize = size
		}
	}

	if v := os.Getenv("SCREENREC_STORAGE_BACKEND"); v != "" {
		c.StorageBackend = v
	}

	if v := os.Getenv("SCREENREC_S3_BUCKET"); v != "" {
		c.S3Bucket = v
	}

	if v := os.Getenv("SCREENREC_S3_REGION"); v != "" {
		c.S3Region = v
	}

	if v := os.Getenv("SCREENREC_S3_ENDPOINT"); v != "" {
		c.S3Endpoint = v
	}

	if v := os.Getenv("SCREENREC_S3_PREFIX"); v != "" {
		c.S3Prefix = v
	}

	if v := os.Getenv("SCREENREC_S3_ACCESS_KEY_ID"); v != "" {
		c.S3AccessKeyID = v
	}

	if v := os.Getenv("SCREENREC_S3_SECRET_ACCESS_KEY"); v != "" {
		c.S3SecretAccessKey = v
	}

	// Rate limiting
	if v := os.Getenv("SCREENREC_RATE_LIMIT"); v != "" {
		rl, err := strconv.ParseFloat(v, 64)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_RATE_LIMIT",
				Message: fmt.Sprintf("invalid rate: %q (must be a number)", v),
			})
		} else if rl < 0 {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_RATE_LIMIT",
				Message: fmt.Sprintf("rate must be non-negative: %v", rl),
			})
		} else {
			c.RateLimit = rl
		}
	}

	if v := os.Getenv("SCREENREC_RATE_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_RATE_BURST",
				Message: fmt.Sprintf("invalid burst: %q (must be an integer)", v),
			})
		} else if b < 1 {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_RATE_BURST",
				Message: fmt.Sprintf("burst must be positive: %d", b),
			})
		} else {
			c.RateBurst = b
		}
	}

	// Reconciliation sweep
	if v := os.Getenv("SCREENREC_SWEEP_INTERVAL"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_SWEEP_INTERVAL",
				Message: fmt.Sprintf("invalid interval: %q (must be an integer representing minutes)", v),
			})
		} else if minutes < 0 {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "SCREENREC_SWEEP_INTERVAL",
				Message: fmt.Sprintf("interval must be non-negative: %d", minutes),
			})
		} else {
			c.SweepInterval = time.Duration(minutes) * time.Minute
		}
	}

	if len(parseErrors) > 0 {
		return parseErrors
	}
	return nil
}

// applyModeDefaults fills in values that depend on the deployment mode and
// were not set explicitly.
func (c *Config) applyModeDefaults() {
	prod := c.Env == "production"

	if c.DBPath == "" {
		if prod {
			c.DBPath = ProdDBPath
		} else {
			c.DBPath = DevDBPath
		}
	}
	if c.UploadDir == "" {
		if prod {
			c.UploadDir = ProdUploadDir
		} else {
			c.UploadDir = DevUploadDir
		}
	}
	if c.AllowedOrigin == "" && !prod {
		c.AllowedOrigin = DevAllowedOrigin
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "SCREENREC_PORT",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port),
		})
	}

	switch c.Env {
	case "development", "production":
	default:
		errs = append(errs, ValidationError{
			Field:   "SCREENREC_ENV",
			Message: fmt.Sprintf("unsupported environment: %q (must be \"development\" or \"production\")", c.Env),
		})
	}

	if c.DBPath == "" {
		errs = append(errs, ValidationError{
			Field:   "SCREENREC_DB",
			Message: "database path cannot be empty",
		})
	}

	switch c.StorageBackend {
	case "local":
		if c.UploadDir == "" {
			errs = append(errs, ValidationError{
				Field:   "SCREENREC_UPLOAD_DIR",
				Message: "upload directory cannot be empty",
			})
		}
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, ValidationError{
				Field:   "SCREENREC_S3_BUCKET",
				Message: "S3 bucket is required when storage backend is \"s3\"",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "SCREENREC_STORAGE_BACKEND",
			Message: fmt.Sprintf("unsupported storage backend: %q (must be \"local\" or \"s3\")", c.StorageBackend),
		})
	}

	// If one S3 credential is set, both must be set.
	if (c.S3AccessKeyID != "") != (c.S3SecretAccessKey != "") {
		errs = append(errs, ValidationError{
			Field:   "SCREENREC_S3_ACCESS_KEY_ID / SCREENREC_S3_SECRET_ACCESS_KEY",
			Message: "both S3 access key ID and secret access key must be set together",
		})
	}

	return errs
}

// IsProduction returns true if the deployment mode is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MustLoad loads configuration and exits the process if it fails.
// Use this for application startup where configuration errors are fatal.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to load configuration\n\n%s\n\nSee .env.example for configuration options.\n", err)
		os.Exit(1)
	}
	return cfg
}
