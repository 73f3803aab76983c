package store

import (
	"context"
	"fmt"
	"time"

	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/jackc/pgx/v5"
)

// Store mirrors the daily attendance logs into PostgreSQL.
type Store struct {
	conn *pgx.Conn
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the attendance table if it doesn't exist.
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS attendance_entries (
			id BIGSERIAL PRIMARY KEY,
			day DATE NOT NULL,
			identity TEXT NOT NULL,
			marked_at TEXT NOT NULL,
			recorded_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (day, identity)
		);
		CREATE INDEX IF NOT EXISTS attendance_entries_day_idx ON attendance_entries (day);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// RecordAttendance stores an entry. A second entry for the same identity on
// the same day is ignored, matching the text log.
func (s *Store) RecordAttendance(ctx context.Context, day time.Time, entry types.AttendanceEntry) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO attendance_entries (day, identity, marked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, identity) DO NOTHING
	`, dayOf(day), entry.Identity, entry.Time)
	return err
}

// DayEntries returns the entries recorded for day in insertion order.
func (s *Store) DayEntries(ctx context.Context, day time.Time) ([]types.AttendanceEntry, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT identity, marked_at FROM attendance_entries
		WHERE day = $1
		ORDER BY id ASC
	`, dayOf(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.AttendanceEntry
	for rows.Next() {
		var e types.AttendanceEntry
		if err := rows.Scan(&e.Identity, &e.Time); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset drops the attendance table.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `DROP TABLE IF EXISTS attendance_entries CASCADE;`)
	return err
}

// dayOf keeps the calendar date of t as a UTC midnight for the DATE column.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
