package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the ingest topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Format discriminates the codec a buffer is decoded with.
type Format string

const (
	FormatGRIB2 Format = "grib2"
	FormatFmap  Format = "fmap"
)

// ProductRef names one GFS product on the NOMADS filter: a run date
// (YYYYMMDD), a cycle hour (0, 6, 12, 18) and a forecast hour.
type ProductRef struct {
	Date     string `json:"date"`
	Cycle    int    `json:"cycle"`
	Forecast int    `json:"forecast"`
}

// IngestRequest asks the engine to load weather from a file or from NOMADS.
type IngestRequest struct {
	ID     string      `json:"id"`
	Format Format      `json:"format"`
	Path   string      `json:"path,omitempty"`
	NOMADS *ProductRef `json:"nomads,omitempty"`

	Received time.Time `json:"-"`
}

// Source returns a printable description of where the request reads from.
func (r IngestRequest) Source() string {
	if r.NOMADS != nil {
		return "nomads:" + r.NOMADS.Date
	}
	return r.Path
}

// Station is a named reporting point on the theater grid.
type Station struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// StationReport is a synthesized observation for one station.
type StationReport struct {
	Station     string    `json:"station"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Metar       string    `json:"metar"`
	IMC         bool      `json:"imc"`
	Units       string    `json:"units"`
	SnapshotID  string    `json:"snapshot_id"`
	TimeTag     string    `json:"time_tag"`
	GeneratedAt time.Time `json:"generated_at"`
}

// OutputEvent is the serialized form destined for the report topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
