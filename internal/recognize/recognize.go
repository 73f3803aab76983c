package recognize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/engine"
	"github.com/andresmejia3/rollcall/internal/matcher"
	"github.com/andresmejia3/rollcall/internal/types"
)

// Marker records attendance for an identity. *attendance.Log satisfies it.
type Marker interface {
	Mark(ctx context.Context, identity string) (types.AttendanceEntry, bool, error)
}

// Summary describes a finished recognition run.
type Summary struct {
	Frames  int
	Faces   int
	Unknown int
	Marked  []types.AttendanceEntry
}

// Session matches live faces against the enrolled records and marks each
// recognised identity at most once.
type Session struct {
	Known     []types.DescriptorRecord
	Tolerance float64
	Log       Marker

	seen    map[string]bool
	summary Summary
}

// NewSession prepares a session over the enrolled records.
func NewSession(known []types.DescriptorRecord, tolerance float64, log Marker) *Session {
	return &Session{
		Known:     known,
		Tolerance: tolerance,
		Log:       log,
		seen:      make(map[string]bool),
	}
}

// ProcessFaces labels every face and marks attendance for new matches.
func (s *Session) ProcessFaces(ctx context.Context, faces []types.Face) ([]camera.Overlay, error) {
	overlays := make([]camera.Overlay, 0, len(faces))
	for _, f := range faces {
		s.summary.Faces++
		res := matcher.Match(s.Known, f.Descriptor, s.Tolerance)
		overlays = append(overlays, camera.Overlay{Box: f.Box, Label: res.Identity, Known: res.Matched})

		if !res.Matched {
			s.summary.Unknown++
			continue
		}
		if s.seen[res.Identity] {
			continue
		}

		entry, marked, err := s.Log.Mark(ctx, res.Identity)
		if err != nil {
			return overlays, fmt.Errorf("mark attendance for %s: %w", res.Identity, err)
		}
		s.seen[res.Identity] = true
		if marked {
			s.summary.Marked = append(s.summary.Marked, entry)
			slog.Info("marked attendance", "identity", entry.Identity, "time", entry.Time, "distance", res.Distance)
		}
	}
	return overlays, nil
}

// Summary returns the counters accumulated so far.
func (s *Session) Summary() Summary {
	return s.summary
}

// Run loops over camera frames until the operator quits, the camera stops
// delivering frames, or ctx is cancelled.
func (s *Session) Run(ctx context.Context, src camera.Source, view camera.Viewer, det engine.Detector) (Summary, error) {
	for ctx.Err() == nil {
		frame, err := src.Next()
		if errors.Is(err, camera.ErrFrameGrab) {
			slog.Warn("frame grab failed, ending recognition", "error", err)
			break
		}
		if err != nil {
			return s.summary, err
		}
		s.summary.Frames++

		faces, err := det.Detect(frame.JPEG)
		if err != nil {
			return s.summary, err
		}

		overlays, err := s.ProcessFaces(ctx, faces)
		if err != nil {
			return s.summary, err
		}

		if view != nil && view.Show(frame, overlays) {
			break
		}
	}
	return s.summary, nil
}
