package source

import (
	"io"
	"sync"
	"time"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// Synthetic is a generated solid-color source. It honors the same clock
// semantics as Stream and exists for tests and capability smoke runs.
type Synthetic struct {
	Color    asciify.RGB
	width    int
	height   int
	fps      int
	duration time.Duration

	mu       sync.Mutex
	frameIdx int64
	reads    int
	ended    bool
}

// NewSynthetic builds a solid-color source of the given geometry and length.
func NewSynthetic(width, height, fps int, duration time.Duration, c asciify.RGB) *Synthetic {
	return &Synthetic{
		Color:    c,
		width:    width,
		height:   height,
		fps:      fps,
		duration: duration,
		frameIdx: -1,
	}
}

// Info reports the synthetic geometry as probe metadata.
func (s *Synthetic) Info() Probe {
	return Probe{
		Width:    s.width,
		Height:   s.height,
		FPS:      float64(s.fps),
		Duration: s.duration,
		HasVideo: true,
	}
}

// Dims returns the frame dimensions.
func (s *Synthetic) Dims() (int, int) { return s.width, s.height }

// FPS returns the frame rate.
func (s *Synthetic) FPS() int { return s.fps }

// FrameAt generates the frame for the clock position.
func (s *Synthetic) FrameAt(pos time.Duration) (*asciify.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.ended {
		return nil, io.EOF
	}

	total := int64(s.duration.Seconds() * float64(s.fps))
	targetIdx := int64(pos.Seconds() * float64(s.fps))
	if targetIdx >= total {
		s.ended = true
		if s.frameIdx >= 0 {
			return asciify.NewSolidFrame(s.width, s.height, s.Color), io.EOF
		}
		return nil, io.EOF
	}
	if targetIdx <= s.frameIdx {
		return nil, nil
	}
	s.frameIdx = targetIdx
	return asciify.NewSolidFrame(s.width, s.height, s.Color), nil
}

// Seek rewinds or advances the clock.
func (s *Synthetic) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameIdx = int64(pos.Seconds()*float64(s.fps)) - 1
	s.ended = false
	return nil
}

// Close is a no-op.
func (s *Synthetic) Close() error { return nil }

// Reads reports how many FrameAt calls were made. Test instrumentation.
func (s *Synthetic) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
