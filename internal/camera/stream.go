package camera

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"

	"github.com/andresmejia3/rollcall/internal/utils"
)

const megabyte = 1024 * 1024

// StreamError is a decoder failure. Cmd holds the FFmpeg logs.
type StreamError struct {
	Err error
	Cmd *utils.SafeCommand
}

func (e *StreamError) Error() string { return e.Err.Error() }
func (e *StreamError) Unwrap() error { return e.Err }

// Stream reads frames from a video file or stream URL through FFmpeg.
type Stream struct {
	Cmd     *utils.SafeCommand
	ctx     context.Context // cancelling it kills FFmpeg, which is not a failure
	out     io.ReadCloser
	scanner *bufio.Scanner
	count   int
	waited  bool
}

// OpenStream starts FFmpeg on input. The process is killed when ctx ends.
func OpenStream(ctx context.Context, input string) (*Stream, error) {
	ffmpeg := utils.NewFFmpegCmd(ctx, input)
	out, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create ffmpeg stdout pipe: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		return nil, &StreamError{Err: fmt.Errorf("%w: start ffmpeg: %v", ErrCameraUnavailable, err), Cmd: ffmpeg}
	}
	s := newStream(ffmpeg, out)
	s.ctx = ctx
	return s, nil
}

func newStream(cmd *utils.SafeCommand, out io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(utils.SplitJpeg)
	return &Stream{Cmd: cmd, out: out, scanner: scanner}
}

// Next returns the next decoded frame. Undecodable frames are skipped.
// A clean end of input is ErrFrameGrab; FFmpeg exiting with an error is a
// *StreamError wrapping ErrCameraUnavailable.
func (s *Stream) Next() (*Frame, error) {
	for s.scanner.Scan() {
		s.count++

		data := append([]byte(nil), s.scanner.Bytes()...)
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			slog.Debug("skipping undecodable frame", "frame", s.count, "error", err)
			continue
		}
		return &Frame{Index: s.count, JPEG: data, Image: img}, nil
	}

	// FFmpeg may still be writing, Close kills it
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameGrab, err)
	}
	if err := s.wait(); err != nil && (s.ctx == nil || s.ctx.Err() == nil) {
		return nil, &StreamError{Err: fmt.Errorf("%w: ffmpeg: %v", ErrCameraUnavailable, err), Cmd: s.Cmd}
	}
	return nil, ErrFrameGrab
}

// wait reaps FFmpeg once stdout is drained.
func (s *Stream) wait() error {
	if s.Cmd == nil || s.Cmd.Process == nil || s.waited {
		return nil
	}
	s.waited = true
	return s.Cmd.Wait()
}

// Close stops reading and reaps FFmpeg.
func (s *Stream) Close() error {
	s.out.Close()
	if s.Cmd == nil || s.Cmd.Process == nil || s.waited {
		return nil
	}
	s.Cmd.Process.Kill()
	s.wait() // exit status is "killed", nothing useful to report
	return nil
}
