package enroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/engine"
	"github.com/andresmejia3/rollcall/internal/types"
)

// DefaultPhotos is how many faces an enrollment captures.
const DefaultPhotos = 20

// ErrNoFaces is returned when the session ended without capturing any face.
var ErrNoFaces = errors.New("no faces captured")

// Options configures an enrollment session.
type Options struct {
	Identity string
	Photos   int
	SaveDir  string             // frames go to SaveDir/<identity>/<identity>_<n>.jpg
	Progress func(captured int) // optional, called after every captured face
}

// ValidateIdentity rejects names that cannot be used as a capture folder.
func ValidateIdentity(identity string) error {
	switch {
	case identity == "":
		return errors.New("identity cannot be empty")
	case identity == "." || strings.Contains(identity, ".."):
		return fmt.Errorf("identity %q cannot contain \"..\"", identity)
	case strings.ContainsAny(identity, `/\`) || strings.ContainsRune(identity, filepath.Separator):
		return fmt.Errorf("identity %q cannot contain a path separator", identity)
	}
	return nil
}

// Run captures faces for one identity and returns one record per face.
// It stops after opts.Photos faces, when the operator quits, when the
// camera stops delivering frames, or when ctx is cancelled. Whatever was
// captured up to that point is returned, also alongside a source failure.
func Run(ctx context.Context, src camera.Source, view camera.Viewer, det engine.Detector, opts Options) ([]types.DescriptorRecord, error) {
	if err := ValidateIdentity(opts.Identity); err != nil {
		return nil, err
	}
	if opts.Photos < 1 {
		opts.Photos = DefaultPhotos
	}

	dir := filepath.Join(opts.SaveDir, opts.Identity)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}

	var records []types.DescriptorRecord

	for len(records) < opts.Photos {
		if ctx.Err() != nil {
			break
		}

		frame, err := src.Next()
		if errors.Is(err, camera.ErrFrameGrab) {
			slog.Warn("frame grab failed, ending capture", "error", err)
			break
		}
		if err != nil {
			return records, err
		}

		faces, err := det.Detect(frame.JPEG)
		if err != nil {
			return records, err
		}

		var overlays []camera.Overlay
		for _, f := range faces {
			n := len(records) + 1
			path := filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", opts.Identity, n))
			if err := os.WriteFile(path, frame.JPEG, 0644); err != nil {
				return records, fmt.Errorf("save frame: %w", err)
			}

			records = append(records, types.DescriptorRecord{
				Identity:   opts.Identity,
				Descriptor: f.Descriptor,
				Histogram:  engine.Histogram(frame.Image, f.Box),
			})
			overlays = append(overlays, camera.Overlay{Box: f.Box, Label: opts.Identity, Known: true})
			slog.Debug("captured face", "identity", opts.Identity, "n", n, "path", path)

			if opts.Progress != nil {
				opts.Progress(n)
			}
			if len(records) >= opts.Photos {
				break
			}
		}

		if view != nil && view.Show(frame, overlays) {
			break
		}
	}

	if len(records) == 0 {
		return nil, ErrNoFaces
	}
	return records, nil
}
