package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStoreIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rollcall_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Initialize Store (runs migrations)
	s, err := New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)

	day := time.Date(2024, time.March, 7, 9, 0, 0, 0, time.Local)

	// --- Test Scenarios ---

	if err := s.RecordAttendance(ctx, day, types.AttendanceEntry{Identity: "Alice", Time: "09:00:00"}); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}
	if err := s.RecordAttendance(ctx, day, types.AttendanceEntry{Identity: "Bob", Time: "09:05:00"}); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}

	// Same identity, same day: ignored
	if err := s.RecordAttendance(ctx, day.Add(time.Hour), types.AttendanceEntry{Identity: "Alice", Time: "10:00:00"}); err != nil {
		t.Fatalf("Duplicate RecordAttendance should be a no-op, got: %v", err)
	}

	// Same identity, next day: recorded
	if err := s.RecordAttendance(ctx, day.AddDate(0, 0, 1), types.AttendanceEntry{Identity: "Alice", Time: "08:00:00"}); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}

	entries, err := s.DayEntries(ctx, day)
	if err != nil {
		t.Fatalf("DayEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Identity != "Alice" || entries[0].Time != "09:00:00" {
		t.Errorf("Expected first entry Alice 09:00:00, got %+v", entries[0])
	}
	if entries[1].Identity != "Bob" {
		t.Errorf("Expected second entry Bob, got %+v", entries[1])
	}

	next, err := s.DayEntries(ctx, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DayEntries failed: %v", err)
	}
	if len(next) != 1 {
		t.Errorf("Expected 1 entry on the next day, got %d", len(next))
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
}

func TestDayOf(t *testing.T) {
	in := time.Date(2024, time.March, 7, 23, 59, 59, 0, time.Local)
	got := dayOf(in)
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 7 || got.Hour() != 0 {
		t.Errorf("dayOf(%v) = %v", in, got)
	}
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
