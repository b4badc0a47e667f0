package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tourintel/internal/adapters/http/api"
	"github.com/okian/tourintel/internal/adapters/http/site"
	"github.com/okian/tourintel/internal/adapters/http/swagger"
	"github.com/okian/tourintel/internal/adapters/notify"
	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/adapters/upstream/shortvideo"
	"github.com/okian/tourintel/internal/adapters/upstream/streaming"
	"github.com/okian/tourintel/internal/adapters/upstream/ticketing"
	"github.com/okian/tourintel/internal/adapters/upstream/video"
	service "github.com/okian/tourintel/internal/app"
	"github.com/okian/tourintel/internal/config"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/pkg/logger"
	"github.com/okian/tourintel/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection; the pipeline metric set
	// covers what operators actually watch.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Logger isn't available yet, write straight to stderr.
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(buildServiceOptions(ctx, cfg, log)...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc)
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildServiceOptions translates config into service options. Providers
// without credentials stay unset: the service substitutes a disabled
// provider and their stages degrade with warnings.
func buildServiceOptions(ctx context.Context, cfg *config.Config, log logger.Logger) []service.Option {
	opts := []service.Option{
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithRefreshInterval(cfg.RefreshInterval()),
		service.WithReportTTL(cfg.ReportTTL()),
		service.WithHeatmapTTL(cfg.HeatmapTTL()),
		service.WithIdentityTTL(cfg.IdentityTTL()),
		service.WithDefaultRegion(types.ParseRegion(cfg.DefaultRegion)),
		service.WithEventLimit(cfg.EventLimit),
		service.WithHeatmapTopN(cfg.HeatmapTopN),
	}

	if cfg.Ticketing.Enabled() {
		opts = append(opts, service.WithTicketing(ticketing.NewClient(
			cfg.Ticketing.APIKey,
			ticketing.WithBaseURL(cfg.Ticketing.BaseURL),
			ticketing.WithHTTPOptions(clientOptions(cfg.Ticketing)...),
		)))
	} else {
		log.Warn(ctx, "ticketing provider disabled: no API key configured")
	}
	if cfg.Streaming.Enabled() {
		opts = append(opts, service.WithStreaming(streaming.NewClient(
			cfg.Streaming.APIKey,
			streaming.WithBaseURL(cfg.Streaming.BaseURL),
			streaming.WithHTTPOptions(clientOptions(cfg.Streaming)...),
		)))
	} else {
		log.Warn(ctx, "streaming provider disabled: no API key configured")
	}
	if cfg.Video.Enabled() {
		opts = append(opts, service.WithVideo(video.NewClient(
			cfg.Video.APIKey,
			video.WithBaseURL(cfg.Video.BaseURL),
			video.WithHTTPOptions(clientOptions(cfg.Video)...),
		)))
	} else {
		log.Warn(ctx, "video provider disabled: no API key configured")
	}
	if cfg.ShortVideo.Enabled() {
		opts = append(opts, service.WithShortVideo(shortvideo.NewClient(
			cfg.ShortVideo.APIKey,
			shortvideo.WithBaseURL(cfg.ShortVideo.BaseURL),
			shortvideo.WithHTTPOptions(clientOptions(cfg.ShortVideo)...),
		)))
	} else {
		log.Warn(ctx, "short-video provider disabled: no API key configured")
	}

	if cfg.WebhookURL != "" {
		opts = append(opts, service.WithNotifier(notify.NewWebhook(cfg.WebhookURL)))
	}

	return opts
}

// clientOptions maps one provider's config onto shared HTTP client
// options.
func clientOptions(p config.Provider) []upstream.Option {
	return []upstream.Option{
		upstream.WithTimeout(p.Timeout()),
		upstream.WithRateLimit(p.RateLimitPerSecond, p.RateBurst),
		upstream.WithMaxRetries(p.MaxRetries),
	}
}

// startServiceMetricsUpdater periodically publishes service counters as
// gauges so queue depth and refresh pressure show up in Prometheus
// between pipeline runs.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateServiceMetrics publishes one snapshot of service counters.
func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	stats := svc.Stats(ctx)

	if queue, ok := stats["queue"].(map[string]any); ok {
		length, hasLen := queue["length"].(int)
		if hasLen {
			metrics.UpdateQueueSize(length)
		}
		if capacity, ok := queue["capacity"].(int); ok && capacity > 0 && hasLen {
			metrics.UpdateQueueUtilization(float64(length) / float64(capacity))
		}
	}
	if workers, ok := stats["workers"].(map[string]any); ok {
		if count, ok := workers["count"].(int); ok {
			metrics.UpdateWorkerCount(count)
		}
		if active, ok := workers["active"].(int); ok {
			metrics.UpdateWorkerActiveCount(active)
		}
	}
	if refresh, ok := stats["refresh"].(map[string]any); ok {
		if inFlight, ok := refresh["in_flight"].(int); ok {
			metrics.UpdateRefreshInFlight(inFlight)
		}
	}
}
