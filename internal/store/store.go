// Package store keeps the reading and alert history in sqlite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloudpico-climate/internal/types"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/get-latest-reading.sql
var getLatestReadingSQL string

//go:embed sql/get-stats.sql
var getStatsSQL string

//go:embed sql/insert-alert.sql
var insertAlertSQL string

//go:embed sql/get-alerts.sql
var getAlertsSQL string

// ErrNotFound is returned when a station has no readings.
var ErrNotFound = errors.New("not found")

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) InsertReading(ctx context.Context, t types.Telemetry) error {
	if t.Humidity < 0 || t.Humidity > 100 {
		return fmt.Errorf("humidity_pct out of range: %.2f (must be 0-100)", t.Humidity)
	}
	_, err := s.db.ExecContext(ctx, insertReadingSQL,
		t.StationID, formatTime(t.Timestamp), t.Temperature, t.Humidity)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// GetReadings returns readings in [from, to], newest first. limit <= 0
// means no limit.
func (s *Store) GetReadings(ctx context.Context, stationID string, from, to time.Time, limit int) ([]types.Telemetry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, getReadingsSQL, stationID, formatTime(from), formatTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer s.closeRows(rows, "readings")

	var out []types.Telemetry
	for rows.Next() {
		t, err := scanTelemetry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetLatest(ctx context.Context, stationID string) (types.Telemetry, error) {
	t, err := scanTelemetry(s.db.QueryRowContext(ctx, getLatestReadingSQL, stationID))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Telemetry{}, fmt.Errorf("station %q: %w", stationID, ErrNotFound)
	}
	return t, err
}

// GetStats aggregates readings in [from, to]. A window without readings
// yields Count == 0 and zero averages.
func (s *Store) GetStats(ctx context.Context, stationID string, from, to time.Time) (types.Stats, error) {
	st := types.Stats{StationID: stationID, From: from.UTC(), To: to.UTC()}
	var avgT, minT, maxT, avgH, minH, maxH sql.NullFloat64
	err := s.db.QueryRowContext(ctx, getStatsSQL, stationID, formatTime(from), formatTime(to)).
		Scan(&st.Count, &avgT, &minT, &maxT, &avgH, &minH, &maxH)
	if err != nil {
		return st, fmt.Errorf("query stats: %w", err)
	}
	st.AvgTemperature, st.MinTemperature, st.MaxTemperature = avgT.Float64, minT.Float64, maxT.Float64
	st.AvgHumidity, st.MinHumidity, st.MaxHumidity = avgH.Float64, minH.Float64, maxH.Float64
	return st, nil
}

func (s *Store) InsertAlert(ctx context.Context, a types.Alert) error {
	_, err := s.db.ExecContext(ctx, insertAlertSQL,
		a.StationID, formatTime(a.Timestamp), string(a.Kind), a.Temperature, a.Humidity)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetAlerts returns alerts raised in [from, to], newest first.
func (s *Store) GetAlerts(ctx context.Context, stationID string, from, to time.Time) ([]types.Alert, error) {
	rows, err := s.db.QueryContext(ctx, getAlertsSQL, stationID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer s.closeRows(rows, "alerts")

	var out []types.Alert
	for rows.Next() {
		var (
			t    types.Telemetry
			ts   string
			kind string
		)
		if err := rows.Scan(&t.StationID, &ts, &kind, &t.Temperature, &t.Humidity); err != nil {
			return nil, err
		}
		if t.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, types.NewAlert(types.AlertKind(kind), t))
	}
	return out, rows.Err()
}

func (s *Store) closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		s.logger.Error("close rows", "query", what, "error", err)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTelemetry(row scanner) (types.Telemetry, error) {
	var (
		t  types.Telemetry
		ts string
	)
	if err := row.Scan(&t.StationID, &ts, &t.Temperature, &t.Humidity); err != nil {
		return t, err
	}
	var err error
	t.Timestamp, err = parseTime(ts)
	return t, err
}

// Timestamps are stored as fixed-width UTC text so string comparison in
// SQL orders them correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
