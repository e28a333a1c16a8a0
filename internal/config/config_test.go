package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Server defaults
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %v, want %v", cfg.Port, DefaultPort)
	}
	if cfg.Env != DefaultEnv {
		t.Errorf("Env = %v, want %v", cfg.Env, DefaultEnv)
	}
	if cfg.AllowedOrigin != DevAllowedOrigin {
		t.Errorf("AllowedOrigin = %v, want %v", cfg.AllowedOrigin, DevAllowedOrigin)
	}

	// Storage defaults
	if cfg.DBPath != DevDBPath {
		t.Errorf("DBPath = %v, want %v", cfg.DBPath, DevDBPath)
	}
	if cfg.UploadDir != DevUploadDir {
		t.Errorf("UploadDir = %v, want %v", cfg.UploadDir, DevUploadDir)
	}
	if cfg.MaxUploadSize != DefaultMaxUploadSize {
		t.Errorf("MaxUploadSize = %v, want %v", cfg.MaxUploadSize, DefaultMaxUploadSize)
	}
	if cfg.StorageBackend != DefaultStorageBackend {
		t.Errorf("StorageBackend = %v, want %v", cfg.StorageBackend, DefaultStorageBackend)
	}
	if cfg.S3Bucket != "" {
		t.Errorf("S3Bucket = %v, want empty", cfg.S3Bucket)
	}
	if cfg.S3Region != DefaultS3Region {
		t.Errorf("S3Region = %v, want %v", cfg.S3Region, DefaultS3Region)
	}
	if cfg.S3Endpoint != "" {
		t.Errorf("S3Endpoint = %v, want empty", cfg.S3Endpoint)
	}
	if cfg.S3Prefix != DefaultS3Prefix {
		t.Errorf("S3Prefix = %v, want %v", cfg.S3Prefix, DefaultS3Prefix)
	}

	// Rate limiting defaults
	if cfg.RateLimit != DefaultRateLimit {
		t.Errorf("RateLimit = %v, want %v", cfg.RateLimit, DefaultRateLimit)
	}
	if cfg.RateBurst != DefaultRateBurst {
		t.Errorf("RateBurst = %v, want %v", cfg.RateBurst, DefaultRateBurst)
	}

	// Sweep defaults
	if cfg.SweepInterval != 0 {
		t.Errorf("SweepInterval = %v, want 0", cfg.SweepInterval)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_PORT", "9000")
	t.Setenv("SCREENREC_DB", "/data/rec.db")
	t.Setenv("SCREENREC_UPLOAD_DIR", "/data/uploads")
	t.Setenv("SCREENREC_MAX_UPLOAD_SIZE", "5242880")
	t.Setenv("SCREENREC_SWEEP_INTERVAL", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %v, want 9000", cfg.Port)
	}
	if cfg.DBPath != "/data/rec.db" {
		t.Errorf("DBPath = %v, want /data/rec.db", cfg.DBPath)
	}
	if cfg.UploadDir != "/data/uploads" {
		t.Errorf("UploadDir = %v, want /data/uploads", cfg.UploadDir)
	}
	if cfg.MaxUploadSize != 5242880 {
		t.Errorf("MaxUploadSize = %v, want 5242880", cfg.MaxUploadSize)
	}
	if cfg.SweepInterval != 15*time.Minute {
		t.Errorf("SweepInterval = %v, want 15m", cfg.SweepInterval)
	}
}

func TestLoad_AllEnvVars(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_PORT", "3000")
	t.Setenv("SCREENREC_ENV", "production")
	t.Setenv("SCREENREC_ALLOWED_ORIGIN", "https://app.example.com")
	t.Setenv("SCREENREC_DB", "/srv/rec.db")
	t.Setenv("SCREENREC_UPLOAD_DIR", "/srv/uploads")
	t.Setenv("SCREENREC_MAX_UPLOAD_SIZE", "1048576")
	t.Setenv("SCREENREC_STORAGE_BACKEND", "s3")
	t.Setenv("SCREENREC_S3_BUCKET", "my-recordings")
	t.Setenv("SCREENREC_S3_REGION", "eu-west-1")
	t.Setenv("SCREENREC_S3_ENDPOINT", "https://minio.local:9000")
	t.Setenv("SCREENREC_S3_PREFIX", "tenant1/")
	t.Setenv("SCREENREC_S3_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("SCREENREC_S3_SECRET_ACCESS_KEY", "secretkey")
	t.Setenv("SCREENREC_RATE_LIMIT", "25.5")
	t.Setenv("SCREENREC_RATE_BURST", "50")
	t.Setenv("SCREENREC_SWEEP_INTERVAL", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %v, want 3000", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %v, want production", cfg.Env)
	}
	if cfg.AllowedOrigin != "https://app.example.com" {
		t.Errorf("AllowedOrigin = %v, want https://app.example.com", cfg.AllowedOrigin)
	}
	if cfg.DBPath != "/srv/rec.db" {
		t.Errorf("DBPath = %v, want /srv/rec.db", cfg.DBPath)
	}
	if cfg.UploadDir != "/srv/uploads" {
		t.Errorf("UploadDir = %v, want /srv/uploads", cfg.UploadDir)
	}
	if cfg.MaxUploadSize != 1048576 {
		t.Errorf("MaxUploadSize = %v, want 1048576", cfg.MaxUploadSize)
	}
	if cfg.StorageBackend != "s3" {
		t.Errorf("StorageBackend = %v, want s3", cfg.StorageBackend)
	}
	if cfg.S3Bucket != "my-recordings" {
		t.Errorf("S3Bucket = %v, want my-recordings", cfg.S3Bucket)
	}
	if cfg.S3Region != "eu-west-1" {
		t.Errorf("S3Region = %v, want eu-west-1", cfg.S3Region)
	}
	if cfg.S3Endpoint != "https://minio.local:9000" {
		t.Errorf("S3Endpoint = %v, want https://minio.local:9000", cfg.S3Endpoint)
	}
	if cfg.S3Prefix != "tenant1/" {
		t.Errorf("S3Prefix = %v, want tenant1/", cfg.S3Prefix)
	}
	if cfg.S3AccessKeyID != "AKIAEXAMPLE" {
		t.Errorf("S3AccessKeyID = %v, want AKIAEXAMPLE", cfg.S3AccessKeyID)
	}
	if cfg.S3SecretAccessKey != "secretkey" {
		t.Errorf("S3SecretAccessKey = %v, want secretkey", cfg.S3SecretAccessKey)
	}
	if cfg.RateLimit != 25.5 {
		t.Errorf("RateLimit = %v, want 25.5", cfg.RateLimit)
	}
	if cfg.RateBurst != 50 {
		t.Errorf("RateBurst = %v, want 50", cfg.RateBurst)
	}
	if cfg.SweepInterval != 60*time.Minute {
		t.Errorf("SweepInterval = %v, want 60m", cfg.SweepInterval)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid port")
	}
}

func TestLoad_InvalidMaxUploadSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "abc"},
		{"negative", "-1"},
		{"zero", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv("SCREENREC_MAX_UPLOAD_SIZE", tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error for max upload size %q", tt.value)
			}
		})
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "fast"},
		{"negative", "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv("SCREENREC_RATE_LIMIT", tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error for rate limit %q", tt.value)
			}
		})
	}
}

func TestLoad_RateLimitZeroDisables(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_RATE_LIMIT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %v, want 0 (disabled)", cfg.RateLimit)
	}
}

func TestLoad_InvalidRateBurst(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv("SCREENREC_RATE_BURST", tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error for rate burst %q", tt.value)
			}
		})
	}
}

func TestLoad_InvalidSweepInterval(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "hourly"},
		{"negative", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv("SCREENREC_SWEEP_INTERVAL", tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error for sweep interval %q", tt.value)
			}
		})
	}
}

func TestLoad_SweepIntervalZeroRunsOnce(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_SWEEP_INTERVAL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SweepInterval != 0 {
		t.Errorf("SweepInterval = %v, want 0 (run once)", cfg.SweepInterval)
	}
}

func TestLoad_MultipleParseErrors(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_PORT", "invalid")
	t.Setenv("SCREENREC_MAX_UPLOAD_SIZE", "bad")
	t.Setenv("SCREENREC_RATE_LIMIT", "nope")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for multiple invalid values")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "SCREENREC_PORT") {
		t.Errorf("error should mention SCREENREC_PORT: %s", errStr)
	}
	if !strings.Contains(errStr, "SCREENREC_MAX_UPLOAD_SIZE") {
		t.Errorf("error should mention SCREENREC_MAX_UPLOAD_SIZE: %s", errStr)
	}
	if !strings.Contains(errStr, "SCREENREC_RATE_LIMIT") {
		t.Errorf("error should mention SCREENREC_RATE_LIMIT: %s", errStr)
	}
}

func TestLoad_ProductionDefaults(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DBPath != ProdDBPath {
		t.Errorf("DBPath = %v, want %v", cfg.DBPath, ProdDBPath)
	}
	if cfg.UploadDir != ProdUploadDir {
		t.Errorf("UploadDir = %v, want %v", cfg.UploadDir, ProdUploadDir)
	}
	// Production has no implicit origin; CORS stays off unless configured.
	if cfg.AllowedOrigin != "" {
		t.Errorf("AllowedOrigin = %v, want empty", cfg.AllowedOrigin)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
}

func TestLoad_ProductionExplicitPathsPreserved(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_ENV", "production")
	t.Setenv("SCREENREC_DB", "/mnt/rec.db")
	t.Setenv("SCREENREC_UPLOAD_DIR", "/mnt/uploads")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DBPath != "/mnt/rec.db" {
		t.Errorf("DBPath = %v, want /mnt/rec.db", cfg.DBPath)
	}
	if cfg.UploadDir != "/mnt/uploads" {
		t.Errorf("UploadDir = %v, want /mnt/uploads", cfg.UploadDir)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_ENV", "staging")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for unsupported environment")
	}
	if !strings.Contains(err.Error(), "SCREENREC_ENV") {
		t.Errorf("error should mention SCREENREC_ENV: %s", err)
	}
}

func validConfig() *Config {
	return &Config{
		Port:           8080,
		Env:            "development",
		DBPath:         "test.db",
		UploadDir:      "./uploads",
		MaxUploadSize:  1024,
		StorageBackend: "local",
	}
}

func TestValidate_PortRange(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{8080, false},
		{65535, false},
		{65536, true},
		{-1, true},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.Port = tt.port

		errs := cfg.Validate()
		gotErr := len(errs) > 0

		if gotErr != tt.wantErr {
			t.Errorf("Validate() port=%d, gotErr=%v, wantErr=%v", tt.port, gotErr, tt.wantErr)
		}
	}
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Error("Validate() expected error for empty DBPath")
	}

	found := false
	for _, e := range errs {
		if e.Field == "SCREENREC_DB" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Validate() expected SCREENREC_DB in validation errors")
	}
}

func TestValidate_StorageBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		bucket  string
		wantErr bool
	}{
		{"local backend", "local", "", false},
		{"s3 without bucket", "s3", "", true},
		{"s3 with bucket", "s3", "recordings", false},
		{"unknown backend", "gcs", "", true},
		{"empty backend", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StorageBackend = tt.backend
			cfg.S3Bucket = tt.bucket

			errs := cfg.Validate()
			gotErr := len(errs) > 0
			if gotErr != tt.wantErr {
				t.Errorf("Validate() backend=%q bucket=%q gotErr=%v, wantErr=%v, errs=%v",
					tt.backend, tt.bucket, gotErr, tt.wantErr, errs)
			}
		})
	}
}

func TestValidate_EmptyUploadDirWithLocalBackend(t *testing.T) {
	cfg := validConfig()
	cfg.UploadDir = ""

	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Error("Validate() expected error for empty UploadDir with local backend")
	}
}

func TestValidate_S3CredentialsPairing(t *testing.T) {
	tests := []struct {
		name    string
		keyID   string
		secret  string
		wantErr bool
	}{
		{"neither set", "", "", false},
		{"both set", "AKIA123", "secret", false},
		{"only key id", "AKIA123", "", true},
		{"only secret", "", "secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.S3AccessKeyID = tt.keyID
			cfg.S3SecretAccessKey = tt.secret

			errs := cfg.Validate()
			gotErr := len(errs) > 0
			if gotErr != tt.wantErr {
				t.Errorf("Validate() keyID=%q secret=%q gotErr=%v, wantErr=%v", tt.keyID, tt.secret, gotErr, tt.wantErr)
			}
		})
	}
}

func TestLoadWithFlags(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_PORT", "8000")

	// Flag overrides env
	cfg, err := LoadWithFlags(9000, "")
	if err != nil {
		t.Fatalf("LoadWithFlags() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %v, want 9000 (flag should override env)", cfg.Port)
	}
}

func TestLoadWithFlags_DefaultsDoNotOverride(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SCREENREC_PORT", "9000")
	t.Setenv("SCREENREC_ENV", "production")

	// Passing default flag values should not override env
	cfg, err := LoadWithFlags(DefaultPort, DefaultEnv)
	if err != nil {
		t.Fatalf("LoadWithFlags() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %v, want 9000 (default flag should not override env)", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %v, want production (default flag should not override env)", cfg.Env)
	}
}

func TestLoadWithFlags_EnvFlagSelectsModePaths(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadWithFlags(0, "production")
	if err != nil {
		t.Fatalf("LoadWithFlags() error = %v", err)
	}

	if cfg.DBPath != ProdDBPath {
		t.Errorf("DBPath = %v, want %v", cfg.DBPath, ProdDBPath)
	}
	if cfg.UploadDir != ProdUploadDir {
		t.Errorf("UploadDir = %v, want %v", cfg.UploadDir, ProdUploadDir)
	}
	if cfg.AllowedOrigin != "" {
		t.Errorf("AllowedOrigin = %v, want empty", cfg.AllowedOrigin)
	}
}

func TestLoadWithFlags_InvalidOverrideCausesValidationError(t *testing.T) {
	clearEnvVars(t)

	_, err := LoadWithFlags(99999, "")
	if err == nil {
		t.Fatal("LoadWithFlags() expected error for out-of-range port override")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "TEST_FIELD", Message: "something went wrong"}
	got := err.Error()
	want := "TEST_FIELD: something went wrong"
	if got != want {
		t.Errorf("ValidationError.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_String(t *testing.T) {
	errs := ValidationErrors{
		{Field: "FIELD1", Message: "error 1"},
		{Field: "FIELD2", Message: "error 2"},
	}

	s := errs.Error()
	if s == "" {
		t.Error("ValidationErrors.Error() returned empty string")
	}
	if !strings.Contains(s, "FIELD1") || !strings.Contains(s, "error 1") {
		t.Errorf("ValidationErrors.Error() missing first error: %s", s)
	}
	if !strings.Contains(s, "FIELD2") || !strings.Contains(s, "error 2") {
		t.Errorf("ValidationErrors.Error() missing second error: %s", s)
	}
	if !strings.Contains(s, "configuration errors:") {
		t.Errorf("ValidationErrors.Error() missing prefix: %s", s)
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	errs := ValidationErrors{}
	s := errs.Error()
	if s != "" {
		t.Errorf("ValidationErrors.Error() for empty = %q, want empty string", s)
	}
}

func TestIsProduction(t *testing.T) {
	cfg := validConfig()
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development config")
	}
	cfg.Env = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production config")
	}
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SCREENREC_PORT",
		"SCREENREC_ENV",
		"SCREENREC_ALLOWED_ORIGIN",
		"SCREENREC_DB",
		"SCREENREC_UPLOAD_DIR",
		"SCREENREC_MAX_UPLOAD_SIZE",
		"SCREENREC_STORAGE_BACKEND",
		"SCREENREC_S3_BUCKET",
		"SCREENREC_S3_REGION",
		"SCREENREC_S3_ENDPOINT",
		"SCREENREC_S3_PREFIX",
		"SCREENREC_S3_ACCESS_KEY_ID",
		"SCREENREC_S3_SECRET_ACCESS_KEY",
		"SCREENREC_RATE_LIMIT",
		"SCREENREC_RATE_BURST",
		"SCREENREC_SWEEP_INTERVAL",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}
}
