// Package config defines service configuration and loading.
//
// Conventions:
// - New() builds a Config carrying every default.
// - Load(ctx) layers an optional YAML file and TOURINTEL_ env vars on
//   top of the defaults.
// - Validate() fails fast on contract violations; an invalid config
//   never reaches the pipeline.
package config

import (
	"time"
)

// Provider holds the connection settings for one upstream signal
// source.
type Provider struct {
	// BaseURL overrides the provider endpoint, mainly for tests and
	// sandboxes. Empty uses the adapter's production default.
	BaseURL string `koanf:"base_url"`

	// APIKey is the provider credential. Empty disables the adapter;
	// the pipeline degrades to defaults for its signals.
	APIKey string `koanf:"api_key"`

	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `koanf:"timeout_seconds"`

	// RateLimitPerSecond and RateBurst feed the client-side limiter.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second"`
	RateBurst          int     `koanf:"rate_burst"`

	// MaxRetries bounds transient-failure retries per request.
	MaxRetries int `koanf:"max_retries"`
}

// Timeout returns the per-request timeout as a duration.
func (p Provider) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Enabled reports whether the provider has a credential.
func (p Provider) Enabled() bool {
	return p.APIKey != ""
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RefreshIntervalSeconds drives the background staleness sweep.
	// Zero disables the sweep; on-demand requests still work.
	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`

	// Per-stage cache TTLs.
	ReportTTLSeconds   int `koanf:"report_ttl_seconds"`
	HeatmapTTLSeconds  int `koanf:"heatmap_ttl_seconds"`
	IdentityTTLSeconds int `koanf:"identity_ttl_seconds"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory refresh task queue.
	QueueSize int `koanf:"queue_size"`

	// DefaultRegion applies when a caller names no region.
	DefaultRegion string `koanf:"default_region"`

	// EventLimit is the default number of events per report.
	EventLimit int `koanf:"event_limit"`

	// HeatmapTopN is how many cities a heatmap ranks.
	HeatmapTopN int `koanf:"heatmap_top_n"`

	// WebhookURL receives demand alerts. Empty disables notifications.
	WebhookURL string `koanf:"webhook_url"`

	// Upstream providers.
	Ticketing  Provider `koanf:"ticketing"`
	Streaming  Provider `koanf:"streaming"`
	Video      Provider `koanf:"video"`
	ShortVideo Provider `koanf:"short_video"`
}

// New creates a Config carrying every default.
func New() *Config {
	defaultProvider := Provider{
		TimeoutSeconds:     10,
		RateLimitPerSecond: 5,
		RateBurst:          10,
		MaxRetries:         5,
	}

	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		RefreshIntervalSeconds: 300,
		ReportTTLSeconds:       900,
		HeatmapTTLSeconds:      1800,
		IdentityTTLSeconds:     3600,
		WorkerCount:            4,
		QueueSize:              1024,
		DefaultRegion:          "NA",
		EventLimit:             10,
		HeatmapTopN:            10,
		Ticketing:              defaultProvider,
		Streaming:              defaultProvider,
		Video:                  defaultProvider,
		ShortVideo:             defaultProvider,
	}
}

// RefreshInterval returns the sweep interval as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// ReportTTL returns the report cache TTL as a duration.
func (c *Config) ReportTTL() time.Duration {
	return time.Duration(c.ReportTTLSeconds) * time.Second
}

// HeatmapTTL returns the heatmap cache TTL as a duration.
func (c *Config) HeatmapTTL() time.Duration {
	return time.Duration(c.HeatmapTTLSeconds) * time.Second
}

// IdentityTTL returns the identity cache TTL as a duration.
func (c *Config) IdentityTTL() time.Duration {
	return time.Duration(c.IdentityTTLSeconds) * time.Second
}
