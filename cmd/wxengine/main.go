package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/theater-wx-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/theater-wx-engine/internal/adapter/kafka"
	"github.com/couchcryptid/theater-wx-engine/internal/adapter/nomads"
	"github.com/couchcryptid/theater-wx-engine/internal/config"
	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
	"github.com/couchcryptid/theater-wx-engine/internal/observability"
	"github.com/couchcryptid/theater-wx-engine/internal/pipeline"
	"github.com/couchcryptid/theater-wx-engine/internal/storage/sqlite"
)

// readiness is ready when every check passes.
type readiness []interface {
	CheckReadiness(ctx context.Context) error
}

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	eng := engine.New(logger, metrics)
	if cfg.InitialSnapshot != "" {
		if _, err := eng.LoadFile(context.Background(), cfg.InitialSnapshot); err != nil {
			logger.Warn("initial snapshot not loaded", "path", cfg.InitialSnapshot, "error", err)
		}
	}

	// NOMADS fetching is feature-flagged via NOMADS_ENABLED.
	var source domain.ProductSource
	if cfg.NomadsEnabled {
		client := nomads.NewClient(cfg.NomadsBaseURL, nomads.Datum{Lat: cfg.TheaterLat, Lon: cfg.TheaterLon}, cfg.NomadsTimeout, metrics, logger)
		source = nomads.NewCachedSource(client, cfg.NomadsCacheSize, metrics)
		metrics.NomadsEnabled.Set(1)
		logger.Info("nomads fetching enabled",
			"cache_size", cfg.NomadsCacheSize,
			"timeout", cfg.NomadsTimeout,
			"products", nomads.Products(),
		)
	} else {
		logger.Info("nomads fetching disabled")
	}

	checks := readiness{eng}
	var archive *sqlite.Archive
	var passArchive pipeline.Archive
	if cfg.DatabasePath != "" {
		archive, err = sqlite.Open(cfg.DatabasePath, logger)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		passArchive = archive
		checks = append(checks, archive)
	}

	if len(cfg.Stations) == 0 {
		logger.Warn("no stations configured, ingest requests will publish no reports")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(pipeline.TransformerConfig{
		Loader:   eng,
		Source:   source,
		Archive:  passArchive,
		DataDir:  cfg.DataDir,
		Stations: cfg.Stations,
		Units:    cfg.Units,
		Logger:   logger,
	})

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, checks, cfg.Units, logger)
	if archive != nil {
		srv.WithHistory(archive)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			logger.Error("archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
