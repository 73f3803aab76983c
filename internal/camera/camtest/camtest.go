// Package camtest provides scripted cameras, viewers and detectors for tests.
package camtest

import (
	"errors"
	"image"
	"image/color"
	"strconv"

	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/types"
)

// Source replays a fixed number of synthetic frames, then fails with Err
// (camera.ErrFrameGrab when nil).
type Source struct {
	Frames int
	Err    error
	served int
	Closed bool
}

// Next returns the next synthetic frame.
func (s *Source) Next() (*camera.Frame, error) {
	if s.served >= s.Frames {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, camera.ErrFrameGrab
	}
	s.served++
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return &camera.Frame{
		Index: s.served,
		JPEG:  []byte("frame-" + strconv.Itoa(s.served)),
		Image: img,
	}, nil
}

// Served reports how many frames were handed out.
func (s *Source) Served() int { return s.served }

// Close marks the source closed.
func (s *Source) Close() error {
	s.Closed = true
	return nil
}

// Viewer records what it was shown and requests quit after QuitAfter frames
// (0 never quits).
type Viewer struct {
	QuitAfter int
	Shown     [][]camera.Overlay
}

// Show records overlays.
func (v *Viewer) Show(f *camera.Frame, overlays []camera.Overlay) bool {
	v.Shown = append(v.Shown, overlays)
	return v.QuitAfter > 0 && len(v.Shown) >= v.QuitAfter
}

// Close is a no-op.
func (v *Viewer) Close() error { return nil }

// Detector returns the same faces for every frame.
type Detector struct {
	Faces []types.Face
	Err   error
	Calls int
}

// Detect returns the scripted faces.
func (d *Detector) Detect(jpeg []byte) ([]types.Face, error) {
	d.Calls++
	if d.Err != nil {
		return nil, d.Err
	}
	if len(jpeg) == 0 {
		return nil, errors.New("empty frame")
	}
	return d.Faces, nil
}

// Face builds a face with a small box and the given descriptor.
func Face(desc ...float64) types.Face {
	return types.Face{Box: image.Rect(8, 8, 40, 40), Descriptor: desc}
}
