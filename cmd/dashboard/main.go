package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvstore"
	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/wildfire-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	pages, err := config.LoadPages(cfg.PagesFile)
	if err != nil {
		logger.Error("failed to load pages", "error", err)
		os.Exit(1)
	}

	files := csvstore.NewFileStore(cfg.DataDir, pages.Sources, logger, metrics)
	store := csvstore.NewCachedStore(files, cfg.TableCacheSize, metrics, csvstore.WithTTL(cfg.TableCacheTTL))

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.SnapshotPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	opts := pipeline.Options{
		RollingWindow:     cfg.RollingWindow,
		RollingMinPeriods: cfg.RollingMinPeriods,
		BandRoundTo:       cfg.BandRoundTo,
	}
	dash, err := pipeline.New(store, pages, publisher, opts, logger, metrics)
	if err != nil {
		logger.Error("invalid page layout", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, dash, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load every source in the background; /readyz reports 503 until done.
	if cfg.WarmupOnStart {
		go func() {
			if err := dash.WarmUntilReady(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("warm-up error", "error", err)
			}
		}()
	} else {
		dash.MarkReady()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
