package attendance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresmejia3/rollcall/internal/types"
)

const (
	// Separator splits identity and time on every log line.
	Separator = " - "

	dateLayout = "02-01-06"
	timeLayout = "15:04:05"
)

// ErrMissingLog means there is no attendance file for the requested day.
var ErrMissingLog = errors.New("attendance file not found")

// Recorder receives every newly marked entry (e.g. a database ledger).
type Recorder interface {
	RecordAttendance(ctx context.Context, day time.Time, entry types.AttendanceEntry) error
}

// Log is the per-day plain-text attendance record.
type Log struct {
	Dir    string
	Now    func() time.Time
	Mirror Recorder
}

// New returns a Log rooted at dir using the wall clock.
func New(dir string) *Log {
	return &Log{Dir: dir, Now: time.Now}
}

func (l *Log) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

// DayFile is the text log path for t's calendar day.
func (l *Log) DayFile(t time.Time) string {
	return filepath.Join(l.Dir, t.Format(dateLayout)+".txt")
}

// ReportFile is the spreadsheet path for t's calendar day.
func (l *Log) ReportFile(t time.Time) string {
	return filepath.Join(l.Dir, t.Format(dateLayout)+".xlsx")
}

// ParseDay reads a day in the file name format (DD-MM-YY) in the local zone.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, want DD-MM-YY: %w", s, err)
	}
	return t, nil
}

// Today returns the text log and spreadsheet paths for the current day.
func (l *Log) Today() (txt, xlsx string) {
	now := l.now()
	return l.DayFile(now), l.ReportFile(now)
}

// Mark appends "identity - HH:MM:SS" to today's file unless a line for the
// same identity (as parsed by ParseLine) is already present. The returned bool reports whether a line was written.
func (l *Log) Mark(ctx context.Context, identity string) (types.AttendanceEntry, bool, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return types.AttendanceEntry{}, false, errors.New("empty identity")
	}

	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return types.AttendanceEntry{}, false, fmt.Errorf("create attendance dir: %w", err)
	}

	now := l.now()
	path := l.DayFile(now)

	marked, err := alreadyMarked(path, identity)
	if err != nil {
		return types.AttendanceEntry{}, false, err
	}
	if marked {
		return types.AttendanceEntry{}, false, nil
	}

	entry := types.AttendanceEntry{Identity: identity, Time: now.Format(timeLayout)}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return types.AttendanceEntry{}, false, fmt.Errorf("open attendance file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s%s%s\n", entry.Identity, Separator, entry.Time); err != nil {
		f.Close()
		return types.AttendanceEntry{}, false, fmt.Errorf("append attendance: %w", err)
	}
	if err := f.Close(); err != nil {
		return types.AttendanceEntry{}, false, fmt.Errorf("close attendance file: %w", err)
	}

	if l.Mirror != nil {
		if err := l.Mirror.RecordAttendance(ctx, now, entry); err != nil {
			slog.Warn("attendance mirror failed", "identity", identity, "error", err)
		}
	}

	return entry, true, nil
}

func alreadyMarked(path, identity string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open attendance file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if entry, ok := ParseLine(scanner.Text()); ok && NormalizeIdentity(entry.Identity) == identity {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read attendance file: %w", err)
	}
	return false, nil
}

// ReadEntries parses a day file. Lines without a separator are skipped.
func ReadEntries(path string) ([]types.AttendanceEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingLog, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open attendance file: %w", err)
	}
	defer f.Close()

	var entries []types.AttendanceEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if entry, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read attendance file: %w", err)
	}
	return entries, nil
}

// ParseLine splits "identity - HH:MM:SS" on the last separator.
func ParseLine(line string) (types.AttendanceEntry, bool) {
	line = strings.TrimSpace(line)
	i := strings.LastIndex(line, Separator)
	if i < 0 {
		return types.AttendanceEntry{}, false
	}
	return types.AttendanceEntry{
		Identity: line[:i],
		Time:     line[i+len(Separator):],
	}, true
}
