package engine

import (
	"fmt"

	"github.com/Kagami/go-face"
	"github.com/andresmejia3/rollcall/internal/types"
)

// Detector finds faces in an encoded frame and returns one descriptor each.
type Detector interface {
	Detect(jpeg []byte) ([]types.Face, error)
}

// Engine runs dlib's detector and ResNet descriptor model through go-face.
type Engine struct {
	rec *face.Recognizer
	cnn bool
}

// NewEngine loads the dlib models from modelsDir. With cnn set, the slower
// CNN detector is used instead of HOG.
func NewEngine(modelsDir string, cnn bool) (*Engine, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("load face models from %s: %w", modelsDir, err)
	}
	return &Engine{rec: rec, cnn: cnn}, nil
}

// Detect returns every face found in a JPEG frame.
func (e *Engine) Detect(jpeg []byte) ([]types.Face, error) {
	var (
		faces []face.Face
		err   error
	)
	if e.cnn {
		faces, err = e.rec.RecognizeCNN(jpeg)
	} else {
		faces, err = e.rec.Recognize(jpeg)
	}
	if err != nil {
		return nil, fmt.Errorf("recognize frame: %w", err)
	}

	out := make([]types.Face, 0, len(faces))
	for _, f := range faces {
		out = append(out, toFace(f))
	}
	return out, nil
}

// Close releases the native recognizer.
func (e *Engine) Close() {
	e.rec.Close()
}

func toFace(f face.Face) types.Face {
	vec := make([]float64, len(f.Descriptor))
	for i, v := range f.Descriptor {
		vec[i] = float64(v)
	}
	return types.Face{Box: f.Rectangle, Descriptor: vec}
}
