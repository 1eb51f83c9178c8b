package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
)

// DefaultNomadsBaseURL is the GFS 0.25 degree filter endpoint.
const DefaultNomadsBaseURL = "https://nomads.ncep.noaa.gov/cgi-bin/filter_gfs_0p25.pl"

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	Units           domain.UnitSystem
	Stations        []domain.Station
	InitialSnapshot string
	DataDir         string
	DatabasePath    string

	// NOMADS GFS filter configuration.
	NomadsEnabled   bool
	NomadsBaseURL   string
	NomadsTimeout   time.Duration
	NomadsCacheSize int
	TheaterLat      float64
	TheaterLon      float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	units, err := domain.ParseUnitSystem(os.Getenv("UNIT_SYSTEM"))
	if err != nil {
		return nil, fmt.Errorf("invalid UNIT_SYSTEM: %w", err)
	}

	stations, err := domain.ParseStations(os.Getenv("STATIONS"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATIONS: %w", err)
	}

	nomadsTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("NOMADS_TIMEOUT", "60s"))
	if err != nil || nomadsTimeout <= 0 {
		return nil, errors.New("invalid NOMADS_TIMEOUT")
	}

	lat, err := parseCoordinate("THEATER_LAT", 90)
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate("THEATER_LON", 180)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "wx-ingest-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "theater-metar-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "theater-wx-engine"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		Units:           units,
		Stations:        stations,
		InitialSnapshot: os.Getenv("INITIAL_SNAPSHOT"),
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "/data"),
		DatabasePath:    os.Getenv("DATABASE_PATH"),

		NomadsEnabled:   os.Getenv("NOMADS_ENABLED") == "true",
		NomadsBaseURL:   sharedcfg.EnvOrDefault("NOMADS_BASE_URL", DefaultNomadsBaseURL),
		NomadsTimeout:   nomadsTimeout,
		NomadsCacheSize: parseNomadsCacheSize(),
		TheaterLat:      lat,
		TheaterLon:      lon,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parseCoordinate(name string, limit float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func parseNomadsCacheSize() int {
	if s := os.Getenv("NOMADS_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 16
}
