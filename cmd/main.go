package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/matchbox/internal/app"
	"github.com/okian/matchbox/internal/config"
	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/pkg/logger"
	"github.com/okian/matchbox/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the service with configuration options
	svc := service.New(
		service.WithLogger(loggerInstance),
		service.WithConcurrency(cfg.Concurrency),
		service.WithBatchSize(cfg.BatchSize),
		service.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
		service.WithCacheShards(cfg.CacheShards),
		service.WithStorePath(cfg.StorePath),
		service.WithStoreShards(cfg.StoreShards),
		service.WithNumericFields(cfg.NumericFields),
		service.WithDateField(cfg.DateField),
		service.WithDateHorizonDays(cfg.DateHorizonDays),
		service.WithReasonCount(cfg.ReasonCount),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	if cfg.CorpusPath != "" {
		if err := loadCorpusFile(ctx, svc, cfg.CorpusPath); err != nil {
			loggerInstance.Error(ctx, "corpus load failed", logger.String("path", cfg.CorpusPath), logger.Error(err))
			return
		}
	}
	if cfg.ScansPath != "" {
		if err := loadScansFile(ctx, svc, cfg.ScansPath); err != nil {
			loggerInstance.Error(ctx, "scan load failed", logger.String("path", cfg.ScansPath), logger.Error(err))
			return
		}
	}

	// HTTP mux: health and Prometheus metrics only; the matching API is a
	// library surface.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(svc.GetStats())
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

func loadCorpusFile(ctx context.Context, svc *service.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var corpus []model.Actor
	if err := json.Unmarshal(data, &corpus); err != nil {
		return err
	}
	return svc.LoadCorpus(ctx, corpus)
}

func loadScansFile(ctx context.Context, svc *service.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var scans []model.BadgeScan
	if err := json.Unmarshal(data, &scans); err != nil {
		return err
	}
	return svc.LoadScans(ctx, scans)
}
