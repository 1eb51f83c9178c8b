package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
)

// ErrNomadsDisabled is returned for NOMADS requests when no product source
// is configured.
var ErrNomadsDisabled = errors.New("nomads source disabled")

var (
	// ErrFilesDisabled is returned for file requests when no data directory
	// is configured.
	ErrFilesDisabled = errors.New("file requests disabled")
	// ErrOutsideDataDir is returned for file requests naming a path outside
	// the data directory.
	ErrOutsideDataDir = errors.New("path outside data directory")
)

// WeatherLoader decodes a buffer and publishes the snapshot.
type WeatherLoader interface {
	Load(ctx context.Context, format domain.Format, source string, buf []byte) (*engine.Snapshot, error)
}

// Archive records decode passes and the reports synthesized from them.
type Archive interface {
	RecordPass(ctx context.Context, snap *engine.Snapshot, reports []domain.StationReport) error
}

// WxTransformer implements Transformer: it reads the requested buffer, runs
// the decode pass, and renders one report per station.
type WxTransformer struct {
	loader   WeatherLoader
	source   domain.ProductSource
	archive  Archive
	dataDir  string
	stations []domain.Station
	units    domain.UnitSystem
	logger   *slog.Logger
}

// TransformerConfig wires a WxTransformer. Source and Archive are optional.
// File requests are served only from DataDir; an empty DataDir rejects them.
type TransformerConfig struct {
	Loader   WeatherLoader
	Source   domain.ProductSource
	Archive  Archive
	DataDir  string
	Stations []domain.Station
	Units    domain.UnitSystem
	Logger   *slog.Logger
}

// NewTransformer creates a WxTransformer.
func NewTransformer(cfg TransformerConfig) *WxTransformer {
	return &WxTransformer{
		loader:   cfg.Loader,
		source:   cfg.Source,
		archive:  cfg.Archive,
		dataDir:  cfg.DataDir,
		stations: cfg.Stations,
		units:    cfg.Units,
		logger:   cfg.Logger,
	}
}

func (t *WxTransformer) Transform(ctx context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	req, err := domain.ParseIngestRequest(raw)
	if err != nil {
		return nil, err
	}

	buf, err := t.read(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}

	snap, err := t.loader.Load(ctx, req.Format, req.Source(), buf)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}

	reports := domain.BuildReports(snap.Frame, snap.ID, t.stations, t.units)
	if t.archive != nil {
		if err := t.archive.RecordPass(ctx, snap, reports); err != nil {
			t.logger.Warn("archive pass failed", "snapshot_id", snap.ID, "error", err)
		}
	}

	out := make([]domain.OutputEvent, 0, len(reports))
	for _, r := range reports {
		ev, err := domain.SerializeReport(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	t.logger.Info("ingest request processed",
		"request_id", req.ID,
		"snapshot_id", snap.ID,
		"source", req.Source(),
		"reports", len(out),
	)
	return out, nil
}

func (t *WxTransformer) read(ctx context.Context, req domain.IngestRequest) ([]byte, error) {
	if req.NOMADS != nil {
		if t.source == nil {
			return nil, ErrNomadsDisabled
		}
		return t.source.Fetch(ctx, *req.NOMADS)
	}
	if t.dataDir == "" {
		return nil, ErrFilesDisabled
	}
	return readInDir(t.dataDir, req.Path)
}

// readInDir reads path, absolute or relative to dir, without leaving dir.
// Symlinks pointing out of dir are refused by os.Root.
func readInDir(dir, path string) ([]byte, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	rel := path
	if filepath.IsAbs(path) {
		if rel, err = filepath.Rel(dir, path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrOutsideDataDir, path)
		}
	}
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideDataDir, path)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	defer root.Close()

	buf, err := root.ReadFile(rel)
	if err != nil {
		return nil, fmt.Errorf("read weather file: %w", err)
	}
	return buf, nil
}
