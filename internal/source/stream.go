package source

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/pascal-r/glyphcast/internal/asciify"
	"github.com/pascal-r/glyphcast/internal/util"
)

// DefaultFPS is the fixed decode rate frames are resampled to.
const DefaultFPS = 15

// lookPath is an exec seam so tests can run without ffmpeg installed.
var lookPath = exec.LookPath

// Source yields decoded frames keyed to a playback clock position.
type Source interface {
	// Info returns the probed stream metadata.
	Info() Probe
	// Dims returns the decoded frame dimensions in pixels.
	Dims() (int, int)
	// FPS returns the decode frame rate.
	FPS() int
	// FrameAt returns the frame for the given playback position, advancing
	// and dropping as needed to keep up with the clock. A nil frame with a
	// nil error means the current frame is still the right one. io.EOF
	// reports end of stream; the last frame may accompany it.
	FrameAt(pos time.Duration) (*asciify.Frame, error)
	// Seek restarts decoding at the given position.
	Seek(pos time.Duration) error
	Close() error
}

// Stream decodes a media file through an ffmpeg subprocess emitting raw RGBA
// frames at a fixed FPS on a pipe.
type Stream struct {
	path  string
	probe Probe

	// Decode geometry, fixed for the life of the stream.
	width  int
	height int
	fps    int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	closed bool
	ended  bool

	frameBuf  []byte        // reusable buffer for one raw RGBA frame
	frameIdx  int64         // index of the frame currently in frameBuf (-1 = none)
	startTime time.Duration // playback position of frame 0 of the current decode
}

// Open probes the file and starts decoding from the beginning. maxWidth
// bounds the decoded width (0 = native); height follows the aspect ratio.
func Open(path string, maxWidth int) (*Stream, error) {
	probe, err := ProbeMedia(path)
	if err != nil {
		return nil, err
	}
	if !probe.HasVideo {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	w, h := probe.Width, probe.Height
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	// RGBA frames; even dimensions keep downstream encoders happy.
	w -= w % 2
	h -= h % 2
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("degenerate decode size %dx%d for %s", w, h, path)
	}

	s := &Stream{
		path:     path,
		probe:    probe,
		width:    w,
		height:   h,
		fps:      DefaultFPS,
		frameBuf: make([]byte, w*h*4),
		frameIdx: -1,
	}
	if err := s.startDecode(0); err != nil {
		return nil, err
	}
	return s, nil
}

// Info returns the probed metadata.
func (s *Stream) Info() Probe { return s.probe }

// Dims returns the decoded frame dimensions.
func (s *Stream) Dims() (int, int) { return s.width, s.height }

// FPS returns the decode frame rate.
func (s *Stream) FPS() int { return s.fps }

// startDecode launches the ffmpeg video decode subprocess from the given position.
func (s *Stream) startDecode(from time.Duration) error {
	s.stopDecode()

	ffmpeg, err := lookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found")
	}

	ctx, cancel := context.WithCancel(context.Background())

	args := []string{"-v", "quiet"}
	if from > 0 {
		args = append(args, "-ss", util.FormatTimestamp(from))
	}
	args = append(args,
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-vf", fmt.Sprintf("scale=%d:%d,fps=%d", s.width, s.height, s.fps),
		"-an",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting ffmpeg video decode: %w", err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.cancel = cancel
	s.startTime = from
	s.frameIdx = -1
	s.ended = false
	return nil
}

// stopDecode kills and cleans up the current ffmpeg process.
func (s *Stream) stopDecode() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.cmd != nil {
		s.cmd.Wait()
		s.cmd = nil
	}
	s.stdout = nil
}

// readNextFrame reads one complete raw frame from the decode pipe.
func (s *Stream) readNextFrame() bool {
	if s.stdout == nil {
		return false
	}
	if _, err := io.ReadFull(s.stdout, s.frameBuf); err != nil {
		return false
	}
	s.frameIdx++
	return true
}

// FrameAt advances the decode stream to the frame the clock position calls
// for, dropping stale frames. The returned frame wraps the stream's reusable
// buffer: it is valid until the next FrameAt call, matching the one-conversion
// lifetime of a frame.
func (s *Stream) FrameAt(pos time.Duration) (*asciify.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, io.EOF
	}
	if s.ended {
		return nil, io.EOF
	}

	elapsed := pos - s.startTime
	if elapsed < 0 {
		elapsed = 0
	}
	targetIdx := int64(elapsed.Seconds() * float64(s.fps))

	advanced := false
	for s.frameIdx < targetIdx {
		if !s.readNextFrame() {
			s.ended = true
			if s.frameIdx >= 0 {
				// Hand over the final frame along with end-of-stream.
				return &asciify.Frame{Pix: s.frameBuf, Width: s.width, Height: s.height}, io.EOF
			}
			return nil, io.EOF
		}
		advanced = true
	}

	if !advanced {
		// Clock has not reached the next frame yet.
		return nil, nil
	}
	return &asciify.Frame{Pix: s.frameBuf, Width: s.width, Height: s.height}, nil
}

// Seek restarts the decode session at the given position.
func (s *Stream) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream closed")
	}
	if pos < 0 {
		pos = 0
	}
	return s.startDecode(pos)
}

// Close releases the decode subprocess.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.stopDecode()
	return nil
}

// TickInterval returns the recommended scheduling interval for frame updates.
func TickInterval(fps int) time.Duration {
	if fps < 1 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
