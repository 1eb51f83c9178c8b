// Package sqlite archives decode passes and the station reports synthesized
// from them.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
)

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// ErrPassNotFound is returned for an unknown pass id.
var ErrPassNotFound = errors.New("decode pass not found")

// Archive is a SQLite store of decode passes. It implements pipeline.Archive.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// PassRecord is one archived decode pass.
type PassRecord struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	Format      domain.Format    `json:"format"`
	Version     uint32           `json:"version"`
	Messages    int              `json:"messages"`
	Decoded     int              `json:"decoded"`
	Diagnostics int              `json:"diagnostics"`
	Analytics   domain.Analytics `json:"analytics"`
	TimeTag     string           `json:"time_tag"`
	LoadedAt    time.Time        `json:"loaded_at"`
}

// Open opens (creating if needed) the archive at path and applies migrations.
func Open(path string, logger *slog.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	a := &Archive{db: db, logger: logger}
	if err := a.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("archive opened", "path", path)
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// CheckReadiness pings the database.
func (a *Archive) CheckReadiness(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// RecordPass stores a snapshot and its reports in one transaction.
func (a *Archive) RecordPass(ctx context.Context, snap *engine.Snapshot, reports []domain.StationReport) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	f := snap.Frame
	_, err = tx.ExecContext(ctx, `
		INSERT INTO decode_passes (
			id, source, format, version, messages, decoded, diagnostics,
			pressure_min, pressure_max, temperature_min, temperature_max,
			time_tag, loaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, string(snap.Format), f.Version,
		snap.Messages, snap.Decoded, snap.Diagnostics,
		f.Analytics.Pressure.Min, f.Analytics.Pressure.Max,
		f.Analytics.Temperature.Min, f.Analytics.Temperature.Max,
		f.Time.String(), snap.LoadedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decode pass: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO station_reports (pass_id, station, x, y, metar, imc, units, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare station report: %w", err)
	}
	defer stmt.Close()

	for _, r := range reports {
		if _, err := stmt.ExecContext(ctx,
			snap.ID, r.Station, r.X, r.Y, r.Metar, r.IMC, r.Units,
			r.GeneratedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert station report %s: %w", r.Station, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	a.logger.Debug("decode pass archived", "id", snap.ID, "reports", len(reports))
	return nil
}

// RecentPasses returns up to limit passes, newest first.
func (a *Archive) RecentPasses(ctx context.Context, limit int) ([]PassRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, source, format, version, messages, decoded, diagnostics,
		       pressure_min, pressure_max, temperature_min, temperature_max,
		       time_tag, loaded_at
		FROM decode_passes
		ORDER BY loaded_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var out []PassRecord
	for rows.Next() {
		var (
			p        PassRecord
			format   string
			loadedAt string
		)
		if err := rows.Scan(
			&p.ID, &p.Source, &format, &p.Version, &p.Messages, &p.Decoded, &p.Diagnostics,
			&p.Analytics.Pressure.Min, &p.Analytics.Pressure.Max,
			&p.Analytics.Temperature.Min, &p.Analytics.Temperature.Max,
			&p.TimeTag, &loadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		p.Format = domain.Format(format)
		if p.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
			return nil, fmt.Errorf("parse loaded_at: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReportsForPass returns the station reports of a pass in station order.
func (a *Archive) ReportsForPass(ctx context.Context, passID string) ([]domain.StationReport, error) {
	var tag string
	err := a.db.QueryRowContext(ctx, `SELECT time_tag FROM decode_passes WHERE id = ?`, passID).Scan(&tag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPassNotFound, passID)
	}
	if err != nil {
		return nil, fmt.Errorf("query pass: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT station, x, y, metar, imc, units, generated_at
		FROM station_reports
		WHERE pass_id = ?
		ORDER BY station`, passID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []domain.StationReport
	for rows.Next() {
		var (
			r           domain.StationReport
			generatedAt string
		)
		if err := rows.Scan(&r.Station, &r.X, &r.Y, &r.Metar, &r.IMC, &r.Units, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if r.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
			return nil, fmt.Errorf("parse generated_at: %w", err)
		}
		r.SnapshotID = passID
		r.TimeTag = tag
		out = append(out, r)
	}
	return out, rows.Err()
}
