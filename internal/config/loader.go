package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Valid log levels, matching the logger's accepted set.
var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Load builds a Config by layering defaults, an optional file, and
// env vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TOURINTEL_CONFIG is set
//  3. env (prefix TOURINTEL_)
//
// The context is reserved for future remote providers.
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TOURINTEL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Flat keys keep single underscores: TOURINTEL_WORKER_COUNT ->
	// worker_count. Nested provider keys use a double underscore:
	// TOURINTEL_TICKETING__API_KEY -> ticketing.api_key.
	envProvider := env.Provider("TOURINTEL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tourintel_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on contract violations. A config rejected here
// never reaches the pipeline.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, ok := validLogLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("%w: refresh interval must not be negative", ErrInvalidConfig)
	}
	if c.ReportTTLSeconds <= 0 || c.HeatmapTTLSeconds <= 0 || c.IdentityTTLSeconds <= 0 {
		return fmt.Errorf("%w: cache TTLs must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker count must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	}
	if c.EventLimit < 1 || c.EventLimit > 200 {
		return fmt.Errorf("%w: event limit must be in [1, 200]", ErrInvalidConfig)
	}
	if c.HeatmapTopN <= 0 {
		return fmt.Errorf("%w: heatmap top N must be positive", ErrInvalidConfig)
	}

	for name, provider := range map[string]Provider{
		"ticketing":   c.Ticketing,
		"streaming":   c.Streaming,
		"video":       c.Video,
		"short_video": c.ShortVideo,
	} {
		if provider.TimeoutSeconds <= 0 {
			return fmt.Errorf("%w: %s timeout must be positive", ErrInvalidConfig, name)
		}
		if provider.RateLimitPerSecond <= 0 || provider.RateBurst <= 0 {
			return fmt.Errorf("%w: %s rate limit must be positive", ErrInvalidConfig, name)
		}
		if provider.MaxRetries <= 0 {
			return fmt.Errorf("%w: %s max retries must be positive", ErrInvalidConfig, name)
		}
	}

	return nil
}
