package camera

import (
	"errors"
	"image"
)

// ErrCameraUnavailable means the capture device or stream could not be opened or failed.
var ErrCameraUnavailable = errors.New("video source unavailable")

// ErrFrameGrab means the device stopped delivering frames.
var ErrFrameGrab = errors.New("failed to grab frame")

// Frame is one captured image.
type Frame struct {
	Index int
	JPEG  []byte      // encoded frame, fed to the face engine and written to disk
	Image image.Image // decoded pixels, used for face histograms
}

// Overlay is a labelled box drawn on top of a frame.
type Overlay struct {
	Box   image.Rectangle
	Label string
	Known bool
}

// Source produces frames until it fails or is closed.
type Source interface {
	Next() (*Frame, error)
	Close() error
}

// Viewer shows frames to the operator. Show reports true once the operator
// asked to quit.
type Viewer interface {
	Show(f *Frame, overlays []Overlay) bool
	Close() error
}
