package camera

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	knownColor   = color.RGBA{G: 255, A: 255}
	unknownColor = color.RGBA{R: 255, A: 255}
)

// Webcam reads frames from a local capture device.
type Webcam struct {
	vc    *gocv.VideoCapture
	mat   gocv.Mat
	count int
}

// OpenWebcam opens the capture device at index.
func OpenWebcam(index int) (*Webcam, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("%w (device %d): %v", ErrCameraUnavailable, index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w (device %d)", ErrCameraUnavailable, index)
	}
	return &Webcam{vc: vc, mat: gocv.NewMat()}, nil
}

// Next grabs and encodes the next frame.
func (w *Webcam) Next() (*Frame, error) {
	if ok := w.vc.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, ErrFrameGrab
	}
	w.count++

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, w.mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	jpeg := append([]byte(nil), buf.GetBytes()...)

	img, err := w.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	return &Frame{Index: w.count, JPEG: jpeg, Image: img}, nil
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mat.Close()
	return w.vc.Close()
}

// Window displays frames with face boxes. Pressing q quits.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a display window.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws overlays on the frame and polls the keyboard once.
func (w *Window) Show(f *Frame, overlays []Overlay) bool {
	mat, err := gocv.IMDecode(f.JPEG, gocv.IMReadColor)
	if err != nil {
		return false
	}
	defer mat.Close()

	for _, o := range overlays {
		c := unknownColor
		if o.Known {
			c = knownColor
		}
		gocv.Rectangle(&mat, o.Box, c, 2)
		gocv.PutText(&mat, o.Label, image.Pt(o.Box.Min.X, o.Box.Min.Y-10), gocv.FontHersheySimplex, 0.7, c, 2)
	}

	w.win.IMShow(mat)
	return w.win.WaitKey(1)&0xFF == 'q'
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
