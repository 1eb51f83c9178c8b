package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngestRequest(t *testing.T) {
	received := time.Date(2024, 4, 26, 12, 30, 0, 0, time.UTC)

	t.Run("file request", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"id":"req-1","format":"GRIB2","path":"/data/gfs.grb2"}`), Timestamp: received}
		req, err := ParseIngestRequest(raw)

		require.NoError(t, err)
		assert.Equal(t, "req-1", req.ID)
		assert.Equal(t, FormatGRIB2, req.Format)
		assert.Equal(t, "/data/gfs.grb2", req.Source())
		assert.Equal(t, received, req.Received)
	})

	t.Run("nomads request", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"id":"req-2","format":"grib2","nomads":{"date":"20240426","cycle":12,"forecast":6}}`)}
		req, err := ParseIngestRequest(raw)

		require.NoError(t, err)
		require.NotNil(t, req.NOMADS)
		assert.Equal(t, ProductRef{Date: "20240426", Cycle: 12, Forecast: 6}, *req.NOMADS)
		assert.Equal(t, "nomads:20240426", req.Source())
	})

	t.Run("id falls back to key", func(t *testing.T) {
		raw := RawEvent{Key: []byte("key-7"), Value: []byte(`{"format":"fmap","path":"261200.fmap"}`)}
		req, err := ParseIngestRequest(raw)

		require.NoError(t, err)
		assert.Equal(t, "key-7", req.ID)
	})

	invalid := map[string]string{
		"malformed json":    `{"format":`,
		"unknown format":    `{"format":"netcdf","path":"a.nc"}`,
		"no source":         `{"format":"grib2"}`,
		"two sources":       `{"format":"grib2","path":"a","nomads":{"date":"20240426"}}`,
		"fmap from nomads":  `{"format":"fmap","nomads":{"date":"20240426"}}`,
		"bad product date":  `{"format":"grib2","nomads":{"date":"2024-04-26"}}`,
		"bad cycle":         `{"format":"grib2","nomads":{"date":"20240426","cycle":3}}`,
		"bad forecast hour": `{"format":"grib2","nomads":{"date":"20240426","forecast":999}}`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseIngestRequest(RawEvent{Value: []byte(body)})
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestParseStations(t *testing.T) {
	stations, err := ParseStations("KUNSAN:12:30, OSAN:20:22,")
	require.NoError(t, err)
	assert.Equal(t, []Station{{Name: "KUNSAN", X: 12, Y: 30}, {Name: "OSAN", X: 20, Y: 22}}, stations)

	empty, err := ParseStations("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"KUNSAN", "KUNSAN:1", "KUNSAN:a:b", "KUNSAN:60:1", ":1:1"} {
		_, err := ParseStations(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildReports(t *testing.T) {
	generated := time.Date(2024, 4, 26, 12, 31, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(generated))
	defer SetClock(nil)

	f := clearFrame()
	stations := []Station{{Name: "KUNSAN", X: 10, Y: 20}}

	reports := BuildReports(f, "snap-1", stations, Metric)

	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, "KUNSAN", r.Station)
	assert.Equal(t, "261200Z 09010KT 9999 CLR 20/10 Q1013", r.Metar)
	assert.Equal(t, "metric", r.Units)
	assert.Equal(t, "snap-1", r.SnapshotID)
	assert.Equal(t, "261200", r.TimeTag)
	assert.Equal(t, generated, r.GeneratedAt)

	t.Run("serialize", func(t *testing.T) {
		out, err := SerializeReport(r)
		require.NoError(t, err)

		assert.Equal(t, []byte("KUNSAN"), out.Key)
		assert.Equal(t, "snap-1", out.Headers["snapshot_id"])
		assert.Equal(t, "2024-04-26T12:31:00Z", out.Headers["generated_at"])

		var decoded StationReport
		require.NoError(t, json.Unmarshal(out.Value, &decoded))
		assert.Equal(t, r.Metar, decoded.Metar)
	})
}
