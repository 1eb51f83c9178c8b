package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidRequest marks an ingest request that can never be processed.
var ErrInvalidRequest = errors.New("invalid ingest request")

var productDateRe = regexp.MustCompile(`^\d{8}$`)

// ParseIngestRequest deserializes and validates a RawEvent's value.
func ParseIngestRequest(raw RawEvent) (IngestRequest, error) {
	var req IngestRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return IngestRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Format = Format(strings.ToLower(string(req.Format)))
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	req.Received = raw.Timestamp
	if err := req.Validate(); err != nil {
		return IngestRequest{}, err
	}
	return req, nil
}

// Validate checks that the request names exactly one source its format can
// be read from.
func (r IngestRequest) Validate() error {
	switch r.Format {
	case FormatGRIB2, FormatFmap:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, r.Format)
	}
	switch {
	case r.Path == "" && r.NOMADS == nil:
		return fmt.Errorf("%w: no path or nomads product", ErrInvalidRequest)
	case r.Path != "" && r.NOMADS != nil:
		return fmt.Errorf("%w: both path and nomads product", ErrInvalidRequest)
	case r.NOMADS != nil && r.Format != FormatGRIB2:
		return fmt.Errorf("%w: nomads products are grib2", ErrInvalidRequest)
	}
	if p := r.NOMADS; p != nil {
		if !productDateRe.MatchString(p.Date) {
			return fmt.Errorf("%w: product date %q", ErrInvalidRequest, p.Date)
		}
		if p.Cycle < 0 || p.Cycle > 18 || p.Cycle%6 != 0 {
			return fmt.Errorf("%w: cycle %d", ErrInvalidRequest, p.Cycle)
		}
		if p.Forecast < 0 || p.Forecast > 384 {
			return fmt.Errorf("%w: forecast hour %d", ErrInvalidRequest, p.Forecast)
		}
	}
	return nil
}

// ParseStations parses "NAME:x:y" entries separated by commas.
func ParseStations(s string) ([]Station, error) {
	var out []Station
	for entry := range strings.SplitSeq(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var st Station
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("station %q: want NAME:x:y", entry)
		}
		st.Name = parts[0]
		if _, err := fmt.Sscanf(parts[1]+" "+parts[2], "%d %d", &st.X, &st.Y); err != nil {
			return nil, fmt.Errorf("station %q: %w", entry, err)
		}
		if st.Name == "" || !InGrid(st.X, st.Y) {
			return nil, fmt.Errorf("station %q: %w", entry, ErrOutOfGrid)
		}
		out = append(out, st)
	}
	return out, nil
}

// BuildReports synthesizes one report per station from a frame.
func BuildReports(f *Frame, snapshotID string, stations []Station, units UnitSystem) []StationReport {
	now := clock.Now()
	reports := make([]StationReport, 0, len(stations))
	for _, st := range stations {
		reports = append(reports, StationReport{
			Station:     st.Name,
			X:           st.X,
			Y:           st.Y,
			Metar:       Metar(f, st.X, st.Y, units),
			IMC:         IsIMC(f, st.X, st.Y),
			Units:       units.String(),
			SnapshotID:  snapshotID,
			TimeTag:     f.Time.String(),
			GeneratedAt: now,
		})
	}
	return reports
}

// SerializeReport marshals a report for the report topic, keyed by station.
func SerializeReport(r StationReport) (OutputEvent, error) {
	value, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(r.Station),
		Value: value,
		Headers: map[string]string{
			"snapshot_id":  r.SnapshotID,
			"time_tag":     r.TimeTag,
			"generated_at": r.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
