package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/fmap"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2/grib2test"
	"github.com/couchcryptid/theater-wx-engine/internal/observability"
)

const (
	testSource  = "gfs.t12z.pgrb2.0p25.f000"
	testTimeTag = "261200"
)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func newTestEngine() (*Engine, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(discardLogger(), m), m
}

func prmsl(ni, nj int, pa float64) []byte {
	return grib2test.Message(grib2test.Field{
		Category:    3,
		Number:      1,
		SurfaceType: grib2.SurfaceMeanSea,
		Ni:          ni,
		Nj:          nj,
		Values:      grib2test.Uniform(ni, nj, pa),
	})
}

// theaterBuffer holds one of every mapped parameter on a 4x4 grid. The cloud
// base pressure comes first to show it is applied after sea-level pressure
// and temperature.
func theaterBuffer() []byte {
	u := func(cat, num, st uint8, sv uint32, v float64, dec int16) []byte {
		return grib2test.Message(grib2test.Field{
			Category:     cat,
			Number:       num,
			SurfaceType:  st,
			SurfaceValue: sv,
			Ni:           4,
			Nj:           4,
			Values:       grib2test.Uniform(4, 4, v),
			DecimalScale: dec,
		})
	}
	return grib2test.Concat(
		u(3, 0, grib2.SurfaceConvectiveCloudBase, 0, 95000, 0), // PRES
		prmsl(4, 4, 101325),
		u(0, 0, grib2.SurfaceAboveGround, 2, 288.15, 2), // TMP
		u(2, 2, grib2.SurfaceAboveGround, 10, -5, 0),    // UGRD 10 m
		u(2, 3, grib2.SurfaceAboveGround, 10, 0, 0),     // VGRD 10 m
		u(2, 2, grib2.SurfaceIsobaric, 10000, -10, 0),   // UGRD 100 hPa
		u(2, 3, grib2.SurfaceIsobaric, 10000, 0, 0),     // VGRD 100 hPa
		u(2, 2, grib2.SurfaceIsobaric, 60000, 3, 0),     // UGRD, no wind level
		u(6, 1, grib2.SurfaceIsobaric, 50000, 100, 0),   // TCDC
		u(1, 7, grib2.SurfaceGround, 0, 0.001, 4),       // PRATE
		u(19, 0, grib2.SurfaceGround, 0, 20000, 0),      // VIS
		u(1, 8, grib2.SurfaceGround, 0, 5, 0),           // APCP
		u(0, 1, grib2.SurfaceIsobaric, 50000, 60, 0),    // unmapped parameter
	)
}

func TestDecodeGRIB2SinglePRMSL(t *testing.T) {
	f, stats, err := DecodeGRIB2(prmsl(1, 1, 101000), nil)
	require.NoError(t, err)

	for y := range domain.GridY {
		for x := range domain.GridX {
			require.InDelta(t, 1010.0, f.Pressure[y][x], 1e-9)
		}
	}
	assert.InDelta(t, 1010.0, f.Analytics.Pressure.Min, 1e-9)
	assert.InDelta(t, 1010.0, f.Analytics.Pressure.Max, 1e-9)
	assert.Equal(t, domain.Extrema{Min: 50, Max: -50}, f.Analytics.Temperature)
	assert.Equal(t, domain.Version, f.Version)
	assert.Equal(t, testTimeTag, f.Time.String())
	assert.Equal(t, 1, stats.Messages)
	assert.Equal(t, 1, stats.Decoded)
	assert.Zero(t, stats.Diagnostics)
}

func TestDecodeGRIB2Theater(t *testing.T) {
	f, stats, err := DecodeGRIB2(theaterBuffer(), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 13, stats.Messages)
	assert.Equal(t, 8, stats.Decoded)
	assert.Equal(t, 1, stats.Params[grib2.ParamPRMSL])
	assert.Equal(t, 2, stats.Params[grib2.ParamVGRD])

	c := struct{ x, y int }{30, 30}
	assert.InDelta(t, 1013.25, f.Pressure[c.y][c.x], 1e-6)
	assert.InDelta(t, 15.0, f.Temperature[c.y][c.x], 1e-6)
	assert.InDelta(t, 1759, f.Cloud.Base[c.y][c.x], 5)
	assert.InDelta(t, 20.0, f.Visibility[c.y][c.x], 1e-9)

	assert.InDelta(t, 90, f.Wind[c.y][c.x][0].Direction, 1e-6)
	assert.InDelta(t, 9.72, f.Wind[c.y][c.x][0].Speed, 1e-6)
	assert.InDelta(t, 19.44, f.Wind[c.y][c.x][9].Speed, 1e-6)
	assert.Zero(t, f.Wind[c.y][c.x][4], "unpaired level produces no vector")

	assert.Equal(t, int32(13), f.Cloud.Cover[c.y][c.x])
	assert.Equal(t, 4.0, f.Cloud.Size[c.y][c.x])
	assert.Equal(t, int32(1), f.Shower[c.y][c.x])
	assert.Equal(t, domain.WeatherInclement, f.Type[c.y][c.x])
	assert.True(t, f.Fields.Has(domain.FieldShower|domain.FieldVisibility))
	assert.False(t, f.Fields.Has(domain.FieldFog))

	assert.InDelta(t, 90, f.Airmass.Direction, 1)
	assert.InDelta(t, 4.86, f.Airmass.Speed, 1e-6)

	metar := domain.Metar(f, c.x, c.y, domain.Metric)
	assert.Equal(t, "261200Z 09010KT 9999 SHRA OVC018 15/15 Q1013", metar)
}

func TestDecodeGRIB2Failures(t *testing.T) {
	t.Run("unpaired wind only", func(t *testing.T) {
		buf := grib2test.Message(grib2test.Field{
			Category:     2,
			Number:       2,
			SurfaceType:  grib2.SurfaceIsobaric,
			SurfaceValue: 50000,
			Ni:           2,
			Nj:           2,
			Values:       grib2test.Uniform(2, 2, 4),
		})
		_, stats, err := DecodeGRIB2(buf, nil)
		require.ErrorIs(t, err, ErrNoData)
		assert.Equal(t, 1, stats.Messages)
	})

	t.Run("garbage", func(t *testing.T) {
		_, stats, err := DecodeGRIB2([]byte("not a grib buffer at all"), nil)
		require.ErrorIs(t, err, ErrNoData)
		assert.Equal(t, 1, stats.Kinds["bad_indicator"])
	})

	t.Run("unsupported grid template", func(t *testing.T) {
		buf := grib2test.Message(grib2test.Field{
			Category:     3,
			Number:       1,
			SurfaceType:  grib2.SurfaceMeanSea,
			Ni:           2,
			Nj:           2,
			Values:       grib2test.Uniform(2, 2, 101000),
			GridTemplate: 40,
		})
		_, stats, err := DecodeGRIB2(buf, nil)
		require.ErrorIs(t, err, ErrNoData)
		assert.Positive(t, stats.Diagnostics)
	})

	t.Run("non-meteorological discipline", func(t *testing.T) {
		buf := grib2test.Message(grib2test.Field{
			Discipline:  10, // oceanographic
			Category:    3,
			Number:      1,
			SurfaceType: grib2.SurfaceMeanSea,
			Ni:          1,
			Nj:          1,
			Values:      []float64{101000},
		})
		_, stats, err := DecodeGRIB2(buf, nil)
		require.ErrorIs(t, err, ErrNoData)
		assert.Zero(t, stats.Decoded)
		assert.Equal(t, 1, stats.Kinds["unsupported_discipline"])
	})

	t.Run("bad message does not stop the pass", func(t *testing.T) {
		buf := grib2test.Concat([]byte("JUNKJUNK"), prmsl(1, 1, 100500))
		f, _, err := DecodeGRIB2(buf, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1005.0, f.Pressure[0][0], 1e-9)
	})
}

func TestEngineLoad(t *testing.T) {
	loaded := time.Date(2024, 4, 26, 12, 40, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(loaded))
	defer domain.SetClock(nil)

	ctx := context.Background()

	t.Run("grib2 publishes a snapshot", func(t *testing.T) {
		e, m := newTestEngine()
		require.ErrorIs(t, e.CheckReadiness(ctx), ErrNoData)
		assert.False(t, e.Frame().Available())
		assert.False(t, e.Changed())

		snap, err := e.Load(ctx, domain.FormatGRIB2, testSource, prmsl(1, 1, 101000))
		require.NoError(t, err)

		assert.NotEmpty(t, snap.ID)
		assert.Equal(t, loaded, snap.LoadedAt)
		assert.Same(t, snap, e.Current())
		assert.NoError(t, e.CheckReadiness(ctx))
		assert.True(t, e.Changed())
		assert.False(t, e.Changed(), "changed flag clears on read")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodePasses.WithLabelValues("grib2", "success")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.GribMessages.WithLabelValues("PRMSL")))
		assert.Equal(t, 8.0, testutil.ToFloat64(m.SnapshotVersion))
	})

	t.Run("failed pass keeps the previous snapshot", func(t *testing.T) {
		e, m := newTestEngine()
		first, err := e.Load(ctx, domain.FormatGRIB2, testSource, prmsl(1, 1, 101000))
		require.NoError(t, err)
		e.Changed()

		_, err = e.Load(ctx, domain.FormatGRIB2, "junk", []byte("junk"))
		require.ErrorIs(t, err, ErrNoData)

		assert.Same(t, first, e.Current())
		assert.False(t, e.Changed())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodePasses.WithLabelValues("grib2", "error")))
	})

	t.Run("fmap takes its time from the filename", func(t *testing.T) {
		e, _ := newTestEngine()
		src, _, err := DecodeGRIB2(prmsl(1, 1, 99900), nil)
		require.NoError(t, err)

		snap, err := e.Load(ctx, domain.FormatFmap, "/wx/031845.fmap", fmap.Codec{}.Encode(src))
		require.NoError(t, err)
		assert.Equal(t, "031845", snap.Frame.Time.String())
		assert.InDelta(t, 999.0, snap.Frame.Pressure[5][5], 1e-4)
	})

	t.Run("unknown format", func(t *testing.T) {
		e, _ := newTestEngine()
		_, err := e.Load(ctx, domain.Format("netcdf"), "a.nc", []byte{1})
		require.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("cancelled context", func(t *testing.T) {
		e, _ := newTestEngine()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.Load(cctx, domain.FormatGRIB2, testSource, prmsl(1, 1, 101000))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestEngineLoadFileAndExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "gfs.grb2")
	require.NoError(t, os.WriteFile(path, theaterBuffer(), 0o600))

	e, _ := newTestEngine()
	_, err := e.Export()
	require.ErrorIs(t, err, ErrNoData)

	_, err = e.LoadFile(ctx, path)
	require.NoError(t, err)

	buf, err := e.Export()
	require.NoError(t, err)

	out := filepath.Join(dir, "261200.fmap")
	require.NoError(t, os.WriteFile(out, buf, 0o600))

	reloaded, _ := newTestEngine()
	snap, err := reloaded.LoadFile(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatFmap, snap.Format)
	assert.Equal(t,
		domain.Metar(e.Frame(), 30, 30, domain.Metric),
		domain.Metar(snap.Frame, 30, 30, domain.Metric),
	)

	_, err = e.LoadFile(ctx, filepath.Join(dir, "missing.grb2"))
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	fm := fmap.Codec{}.Encode(domain.NewFrame())
	tests := []struct {
		name    string
		buf     []byte
		want    domain.Format
		wantErr bool
	}{
		{"261200.fmap", nil, domain.FormatFmap, false},
		{"gfs.GRB2", nil, domain.FormatGRIB2, false},
		{"download", []byte("GRIB\x00\x00\x00\x02"), domain.FormatGRIB2, false},
		{"download", fm, domain.FormatFmap, false},
		{"download", []byte("PK\x03\x04"), "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.name, tt.buf)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
