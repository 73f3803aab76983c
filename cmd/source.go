package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/engine"
	"github.com/andresmejia3/rollcall/internal/utils"
)

// openSource opens the webcam at index, or decodes input through FFmpeg
// when a file or stream URL is given.
func openSource(ctx context.Context, index int, input string) (camera.Source, error) {
	if input != "" {
		if _, err := os.Stat(input); err != nil && !isURL(input) {
			return nil, fmt.Errorf("input %q: %w", input, err)
		}
		return camera.OpenStream(ctx, input)
	}
	return camera.OpenWebcam(index)
}

// openViewer returns nil in headless mode so the loops skip display.
func openViewer(headless bool, title string) camera.Viewer {
	if headless {
		return nil
	}
	return camera.NewWindow(title)
}

func openEngine() (*engine.Engine, error) {
	fmt.Fprintln(os.Stderr, "🚀 Loading face models...")
	return engine.NewEngine(Cfg.Recognition.ModelsDir, Cfg.Recognition.CNN)
}

func isURL(s string) bool {
	for _, scheme := range []string{"rtsp://", "rtmp://", "http://", "https://", "udp://"} {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}

// failedCommand digs the FFmpeg process out of err so ShowError can dump its logs.
func failedCommand(err error) *utils.SafeCommand {
	var streamErr *camera.StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Cmd
	}
	return nil
}

func sourceName(index int, input string) string {
	if input != "" {
		return input
	}
	return fmt.Sprintf("webcam %d", index)
}
