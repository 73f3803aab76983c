package enroll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/camera/camtest"
	"github.com/andresmejia3/rollcall/internal/engine"
	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesRequestedFaces(t *testing.T) {
	dir := t.TempDir()
	src := &camtest.Source{Frames: 100}
	view := &camtest.Viewer{}
	det := &camtest.Detector{Faces: []types.Face{camtest.Face(0.1, 0.2)}}

	var progress []int
	records, err := Run(context.Background(), src, view, det, Options{
		Identity: "Alice",
		Photos:   3,
		SaveDir:  dir,
		Progress: func(n int) { progress = append(progress, n) },
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, 3, src.Served())

	for i, rec := range records {
		assert.Equal(t, "Alice", rec.Identity)
		assert.Equal(t, []float64{0.1, 0.2}, rec.Descriptor)
		assert.Len(t, rec.Histogram, engine.HistogramSize)

		path := filepath.Join(dir, "Alice", "Alice_"+string(rune('1'+i))+".jpg")
		data, err := os.ReadFile(path)
		require.NoError(t, err, "frame %d should be saved", i+1)
		assert.NotEmpty(t, data)
	}
}

func TestRunStopsMidFrameAtLimit(t *testing.T) {
	det := &camtest.Detector{Faces: []types.Face{camtest.Face(1), camtest.Face(2), camtest.Face(3)}}

	records, err := Run(context.Background(), &camtest.Source{Frames: 10}, nil, det, Options{
		Identity: "Bob",
		Photos:   4,
		SaveDir:  t.TempDir(),
	})
	require.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, 2, det.Calls)
}

func TestRunOperatorQuit(t *testing.T) {
	view := &camtest.Viewer{QuitAfter: 2}
	det := &camtest.Detector{Faces: []types.Face{camtest.Face(1)}}

	records, err := Run(context.Background(), &camtest.Source{Frames: 10}, view, det, Options{
		Identity: "Carol",
		Photos:   20,
		SaveDir:  t.TempDir(),
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRunCameraRunsDry(t *testing.T) {
	det := &camtest.Detector{Faces: []types.Face{camtest.Face(1)}}

	records, err := Run(context.Background(), &camtest.Source{Frames: 5}, nil, det, Options{
		Identity: "Dave",
		Photos:   20,
		SaveDir:  t.TempDir(),
	})
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestRunNoFaces(t *testing.T) {
	_, err := Run(context.Background(), &camtest.Source{Frames: 3}, nil, &camtest.Detector{}, Options{
		Identity: "Eve",
		SaveDir:  t.TempDir(),
	})
	assert.True(t, errors.Is(err, ErrNoFaces))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &camtest.Source{Frames: 3}
	_, err := Run(ctx, src, nil, &camtest.Detector{Faces: []types.Face{camtest.Face(1)}}, Options{
		Identity: "Frank",
		SaveDir:  t.TempDir(),
	})
	assert.True(t, errors.Is(err, ErrNoFaces))
	assert.Equal(t, 0, src.Served())
}

func TestRunEmptyIdentity(t *testing.T) {
	_, err := Run(context.Background(), &camtest.Source{}, nil, &camtest.Detector{}, Options{SaveDir: t.TempDir()})
	assert.Error(t, err)
}

func TestRunSourceFailureKeepsCapturedFaces(t *testing.T) {
	broken := fmt.Errorf("%w: ffmpeg: exit status 1", camera.ErrCameraUnavailable)
	det := &camtest.Detector{Faces: []types.Face{camtest.Face(1)}}

	records, err := Run(context.Background(), &camtest.Source{Frames: 2, Err: broken}, nil, det, Options{
		Identity: "Grace",
		Photos:   20,
		SaveDir:  t.TempDir(),
	})
	assert.ErrorIs(t, err, camera.ErrCameraUnavailable)
	assert.False(t, errors.Is(err, ErrNoFaces))
	assert.Len(t, records, 2)
}

func TestRunSourceFailureBeforeAnyFrame(t *testing.T) {
	broken := fmt.Errorf("%w: ffmpeg: exit status 1", camera.ErrCameraUnavailable)

	_, err := Run(context.Background(), &camtest.Source{Err: broken}, nil, &camtest.Detector{}, Options{
		Identity: "Heidi",
		SaveDir:  t.TempDir(),
	})
	assert.ErrorIs(t, err, camera.ErrCameraUnavailable)
}

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Alice", false},
		{"Mary Jane", false},
		{"René", false},
		{"", true},
		{".", true},
		{"..", true},
		{"../x", true},
		{"a/b", true},
		{`a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentity(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunRejectsPathLikeIdentity(t *testing.T) {
	root := t.TempDir()
	saveDir := filepath.Join(root, "captured")
	det := &camtest.Detector{Faces: []types.Face{camtest.Face(1)}}

	_, err := Run(context.Background(), &camtest.Source{Frames: 3}, nil, det, Options{
		Identity: "../escaped",
		SaveDir:  saveDir,
	})
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(root, "escaped"))
	assert.Equal(t, 0, det.Calls)
}
