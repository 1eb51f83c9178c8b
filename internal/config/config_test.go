package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "wx-ingest-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "theater-metar-reports", cfg.KafkaSinkTopic)
	assert.Equal(t, "theater-wx-engine", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, domain.Metric, cfg.Units)
	assert.Empty(t, cfg.Stations)
	assert.Empty(t, cfg.InitialSnapshot)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Empty(t, cfg.DatabasePath)
	assert.False(t, cfg.NomadsEnabled)
	assert.Equal(t, DefaultNomadsBaseURL, cfg.NomadsBaseURL)
	assert.Equal(t, 60*time.Second, cfg.NomadsTimeout)
	assert.Equal(t, 16, cfg.NomadsCacheSize)
	assert.Zero(t, cfg.TheaterLat)
	assert.Zero(t, cfg.TheaterLon)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("UNIT_SYSTEM", "Imperial")
	t.Setenv("STATIONS", "KOBU:10:20, UGKO:30:31")
	t.Setenv("INITIAL_SNAPSHOT", "/data/261200.fmap")
	t.Setenv("DATA_DIR", "/srv/wx")
	t.Setenv("DATABASE_PATH", "/data/archive.db")
	t.Setenv("NOMADS_ENABLED", "true")
	t.Setenv("NOMADS_BASE_URL", "http://nomads.local/filter")
	t.Setenv("NOMADS_TIMEOUT", "2m")
	t.Setenv("NOMADS_CACHE_SIZE", "4")
	t.Setenv("THEATER_LAT", "36.5")
	t.Setenv("THEATER_LON", "-118.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, domain.Imperial, cfg.Units)
	assert.Equal(t, []domain.Station{
		{Name: "KOBU", X: 10, Y: 20},
		{Name: "UGKO", X: 30, Y: 31},
	}, cfg.Stations)
	assert.Equal(t, "/data/261200.fmap", cfg.InitialSnapshot)
	assert.Equal(t, "/srv/wx", cfg.DataDir)
	assert.Equal(t, "/data/archive.db", cfg.DatabasePath)
	assert.True(t, cfg.NomadsEnabled)
	assert.Equal(t, "http://nomads.local/filter", cfg.NomadsBaseURL)
	assert.Equal(t, 2*time.Minute, cfg.NomadsTimeout)
	assert.Equal(t, 4, cfg.NomadsCacheSize)
	assert.InDelta(t, 36.5, cfg.TheaterLat, 1e-9)
	assert.InDelta(t, -118.2, cfg.TheaterLon, 1e-9)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"UNIT_SYSTEM":    "nautical",
		"STATIONS":       "KOBU:70:20",
		"NOMADS_TIMEOUT": "-5s",
		"THEATER_LAT":    "91",
		"THEATER_LON":    "east",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoad_NomadsCacheSizeFallback(t *testing.T) {
	t.Setenv("NOMADS_CACHE_SIZE", "zero")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.NomadsCacheSize)
}
