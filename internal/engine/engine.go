// Package engine runs decode passes and publishes the resulting weather
// snapshot to readers.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/fmap"
	"github.com/couchcryptid/theater-wx-engine/internal/observability"
)

var (
	// ErrNoData is returned while no snapshot holds weather.
	ErrNoData = errors.New("weather unavailable")
	// ErrUnknownFormat is returned when a buffer is neither GRIB2 nor fmap.
	ErrUnknownFormat = errors.New("unknown weather format")
)

// Snapshot is an immutable decoded frame with its provenance.
type Snapshot struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Format      domain.Format `json:"format"`
	Messages    int           `json:"messages"`
	Decoded     int           `json:"decoded"`
	Diagnostics int           `json:"diagnostics"`
	LoadedAt    time.Time     `json:"loaded_at"`

	Frame *domain.Frame `json:"-"`
}

// Engine owns the published snapshot. Decode passes build a fresh frame and
// swap it in whole, so readers never observe a pass in progress.
type Engine struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	codec   fmap.Codec

	current atomic.Pointer[Snapshot]
	changed atomic.Bool
}

// New creates an Engine with no snapshot.
func New(logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{logger: logger, metrics: metrics}
}

// Load decodes buf in the given format and publishes it. The source names
// where buf came from; for fmap it also supplies the time tag.
func (e *Engine) Load(ctx context.Context, format domain.Format, source string, buf []byte) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	snap := &Snapshot{Source: source, Format: format}

	var err error
	switch format {
	case domain.FormatGRIB2:
		var stats PassStats
		snap.Frame, stats, err = DecodeGRIB2(buf, e.logger.With("source", source))
		snap.Messages, snap.Decoded, snap.Diagnostics = stats.Messages, stats.Decoded, stats.Diagnostics
		for param, n := range stats.Params {
			e.metrics.GribMessages.WithLabelValues(param.String()).Add(float64(n))
		}
		for kind, n := range stats.Kinds {
			e.metrics.Diagnostics.WithLabelValues(kind).Add(float64(n))
		}
	case domain.FormatFmap:
		snap.Frame, err = e.decodeFmap(buf, source)
		snap.Messages, snap.Decoded = 1, 1
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	e.metrics.DecodeDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.DecodePasses.WithLabelValues(string(format), "error").Inc()
		return nil, fmt.Errorf("decode %s %s: %w", format, source, err)
	}
	e.metrics.DecodePasses.WithLabelValues(string(format), "success").Inc()

	snap.ID = uuid.NewString()
	snap.LoadedAt = domain.Now()
	e.publish(snap)
	return snap, nil
}

// LoadFile reads a file, detects its format and loads it.
func (e *Engine) LoadFile(ctx context.Context, path string) (*Snapshot, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weather file: %w", err)
	}
	format, err := DetectFormat(path, buf)
	if err != nil {
		return nil, err
	}
	return e.Load(ctx, format, path, buf)
}

func (e *Engine) decodeFmap(buf []byte, source string) (*domain.Frame, error) {
	f := domain.NewFrame()
	if err := e.codec.Decode(buf, f); err != nil {
		return nil, err
	}
	if tag, err := fmap.TimeFromFilename(source); err == nil {
		f.Time = tag
	}
	return f, nil
}

func (e *Engine) publish(s *Snapshot) {
	e.current.Store(s)
	e.changed.Store(true)
	e.metrics.SnapshotVersion.Set(float64(s.Frame.Version))
	e.logger.Info("snapshot published",
		"id", s.ID,
		"source", s.Source,
		"format", s.Format,
		"version", s.Frame.Version,
		"time", s.Frame.Time.String(),
		"messages", s.Messages,
		"diagnostics", s.Diagnostics,
	)
}

// Current returns the published snapshot, or nil before the first load.
func (e *Engine) Current() *Snapshot { return e.current.Load() }

// Frame returns the published frame, or an empty frame before the first
// load. Callers must not modify it.
func (e *Engine) Frame() *domain.Frame {
	if s := e.current.Load(); s != nil {
		return s.Frame
	}
	return domain.NewFrame()
}

// Changed reports whether a snapshot was published since the last call.
func (e *Engine) Changed() bool { return e.changed.Swap(false) }

// CheckReadiness returns ErrNoData until a snapshot has been published.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.current.Load() == nil {
		return ErrNoData
	}
	return nil
}

// Export encodes the published frame as a version 8 snapshot.
func (e *Engine) Export() ([]byte, error) {
	s := e.current.Load()
	if s == nil {
		return nil, ErrNoData
	}
	return e.codec.Encode(s.Frame), nil
}

// DetectFormat picks the codec for a buffer from its name, falling back to
// its leading bytes.
func DetectFormat(name string, buf []byte) (domain.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case fmap.Ext:
		return domain.FormatFmap, nil
	case ".grb2", ".grib2", ".grb", ".grib":
		return domain.FormatGRIB2, nil
	}
	if bytes.HasPrefix(buf, []byte("GRIB")) {
		return domain.FormatGRIB2, nil
	}
	if len(buf) >= 4 {
		if _, err := fmap.LayoutFor(fmap.DetectOrder(buf).Uint32(buf)); err == nil {
			return domain.FormatFmap, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}
