// Package diagnostics provides support bundle generation for collecting
// system health, configuration, and runtime information.
package diagnostics

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/ManojkumarBalini/screenrec/internal/config"
	"github.com/ManojkumarBalini/screenrec/internal/db"
)

// Collector gathers diagnostic information from the system.
type Collector struct {
	db      *db.DB
	config  *config.Config
	started time.Time
}

// NewCollector creates a new diagnostics collector.
func NewCollector(database *db.DB, cfg *config.Config, started time.Time) *Collector {
	return &Collector{
		db:      database,
		config:  cfg,
		started: started,
	}
}

// Bundle represents a complete diagnostics bundle.
type Bundle struct {
	GeneratedAt time.Time      `json:"generated_at"`
	System      SystemInfo     `json:"system"`
	Config      RedactedConfig `json:"config"`
	Health      HealthSummary  `json:"health"`
	Recordings  RecordingStats `json:"recordings"`
	Runtime     RuntimeInfo    `json:"runtime"`
}

// SystemInfo contains basic system information.
type SystemInfo struct {
	GoVersion     string  `json:"go_version"`
	GOOS          string  `json:"goos"`
	GOARCH        string  `json:"goarch"`
	NumCPU        int     `json:"num_cpu"`
	Hostname      string  `json:"hostname"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// RedactedConfig contains configuration with credentials removed.
type RedactedConfig struct {
	Port             int     `json:"port"`
	Env              string  `json:"env"`
	DBPath           string  `json:"db_path"`
	UploadDir        string  `json:"upload_dir"`
	MaxUploadSize    int64   `json:"max_upload_size"`
	StorageBackend   string  `json:"storage_backend"`
	S3Bucket         string  `json:"s3_bucket"`
	S3Region         string  `json:"s3_region"`
	S3Endpoint       string  `json:"s3_endpoint"`
	S3Prefix         string  `json:"s3_prefix"`
	S3CredentialsSet bool    `json:"s3_credentials_set"`
	AllowedOrigin    string  `json:"allowed_origin"`
	RateLimit        float64 `json:"rate_limit"`
	RateBurst        int     `json:"rate_burst"`
	SweepInterval    string  `json:"sweep_interval"`
}

// HealthSummary contains the overall health status.
type HealthSummary struct {
	Overall  string          `json:"overall"`
	Database ComponentHealth `json:"database"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

// RecordingStats contains recording store statistics.
type RecordingStats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}

// RuntimeInfo contains Go runtime information.
type RuntimeInfo struct {
	NumGoroutine int         `json:"num_goroutine"`
	Memory       MemoryStats `json:"memory"`
}

// MemoryStats contains memory statistics.
type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

// Collect gathers all diagnostic information into a Bundle.
func (c *Collector) Collect(ctx context.Context) (*Bundle, error) {
	bundle := &Bundle{
		GeneratedAt: time.Now().UTC(),
	}

	bundle.System = c.collectSystemInfo()
	bundle.Config = c.collectRedactedConfig()
	bundle.Health = c.collectHealth(ctx)
	bundle.Recordings = c.collectRecordingStats()
	bundle.Runtime = c.collectRuntimeInfo()

	return bundle, nil
}

// WriteTarGz writes the diagnostics bundle as a tar.gz archive to the given writer.
func (c *Collector) WriteTarGz(ctx context.Context, w io.Writer) error {
	bundle, err := c.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collecting diagnostics: %w", err)
	}

	gzw := gzip.NewWriter(w)
	defer gzw.Close()

	tw := tar.NewWriter(gzw)
	defer tw.Close()

	// Write bundle.json
	bundleJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling bundle: %w", err)
	}

	if err := addFileToTar(tw, "diagnostics/bundle.json", bundleJSON); err != nil {
		return fmt.Errorf("adding bundle.json to archive: %w", err)
	}

	// Write individual sections for easier parsing
	sections := map[string]interface{}{
		"diagnostics/system.json":     bundle.System,
		"diagnostics/config.json":     bundle.Config,
		"diagnostics/health.json":     bundle.Health,
		"diagnostics/recordings.json": bundle.Recordings,
		"diagnostics/runtime.json":    bundle.Runtime,
	}

	for name, data := range sections {
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", name, err)
		}
		if err := addFileToTar(tw, name, jsonData); err != nil {
			return fmt.Errorf("adding %s to archive: %w", name, err)
		}
	}

	return nil
}

func addFileToTar(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0644,
		ModTime: time.Now(),
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	_, err := tw.Write(data)
	return err
}

func (c *Collector) collectSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	uptime := time.Since(c.started)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		GOOS:          runtime.GOOS,
		GOARCH:        runtime.GOARCH,
		NumCPU:        runtime.NumCPU(),
		Hostname:      hostname,
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
	}
}

func (c *Collector) collectRedactedConfig() RedactedConfig {
	return RedactedConfig{
		Port:             c.config.Port,
		Env:              c.config.Env,
		DBPath:           c.config.DBPath,
		UploadDir:        c.config.UploadDir,
		MaxUploadSize:    c.config.MaxUploadSize,
		StorageBackend:   c.config.StorageBackend,
		S3Bucket:         c.config.S3Bucket,
		S3Region:         c.config.S3Region,
		S3Endpoint:       c.config.S3Endpoint,
		S3Prefix:         c.config.S3Prefix,
		S3CredentialsSet: c.config.S3AccessKeyID != "",
		AllowedOrigin:    c.config.AllowedOrigin,
		RateLimit:        c.config.RateLimit,
		RateBurst:        c.config.RateBurst,
		SweepInterval:    c.config.SweepInterval.String(),
	}
}

func (c *Collector) collectHealth(_ context.Context) HealthSummary {
	summary := HealthSummary{
		Overall: "healthy",
	}

	if err := c.db.Ping(); err != nil {
		summary.Database = ComponentHealth{Healthy: false, Message: err.Error()}
		summary.Overall = "degraded"
	} else {
		summary.Database = ComponentHealth{Healthy: true, Message: "OK"}
	}

	return summary
}

func (c *Collector) collectRecordingStats() RecordingStats {
	stats := RecordingStats{}

	if count, err := c.db.CountRecordings(); err == nil {
		stats.Count = count
	}
	if total, err := c.db.TotalRecordingBytes(); err == nil {
		stats.TotalBytes = total
	}

	return stats
}

func (c *Collector) collectRuntimeInfo() RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeInfo{
		NumGoroutine: runtime.NumGoroutine(),
		Memory: MemoryStats{
			AllocMB:      float64(memStats.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(memStats.Sys) / 1024 / 1024,
			NumGC:        memStats.NumGC,
		},
	}
}
