package capture

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// State of a recording session.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateRecording means frames are being fed to the encode sink.
	StateRecording
	// StateFinalizing means the sink was stopped and the artifact is being
	// assembled. There is no timeout here; a stuck sink hangs the caller.
	StateFinalizing
	// StateFailed means the sink errored mid-session. Buffered segments are
	// discarded; no partial artifact is produced.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Segment is one opaque encoded chunk emitted by the sink. Concatenating
// segments in emission order reconstructs the artifact.
type Segment []byte

// Blob is the assembled export artifact.
type Blob struct {
	Data      []byte
	Container string // container actually used, not necessarily the one asked for
}

// Filename derives an output filename whose extension matches the container
// the sink actually produced.
func (b *Blob) Filename(base string) string {
	return base + "." + containerExt(b.Container)
}

// Config describes one recording session.
type Config struct {
	Width  int
	Height int
	FPS    int
	// SourcePath names the media file whose audio track is muxed into the
	// output. Empty records video-only.
	SourcePath string
	// AudioOffset is the playback position the recording started at, so the
	// muxed audio lines up with the captured frames.
	AudioOffset time.Duration
	// Containers is the probe priority order; nil uses the default list.
	Containers []string
}

func (c Config) validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("capture: invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.FPS < 1 {
		return fmt.Errorf("capture: invalid frame rate %d", c.FPS)
	}
	return nil
}

// Recorder is the capture/encode pipeline: it feeds rendered surfaces to an
// encode sink at the session frame rate and assembles the emitted segments
// into one artifact on stop.
type Recorder struct {
	mu        sync.Mutex
	state     State
	sink      encodeSink
	container string
	frameSize int
	failure   error
	cleanup   func() // temp audio extraction dir
	logf      func(format string, args ...any)
}

// NewRecorder wires a recorder. logf receives degradation diagnostics; nil
// discards them.
func NewRecorder(logf func(format string, args ...any)) *Recorder {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Recorder{logf: logf}
}

// State returns the session state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Container reports the container chosen for the active or last session.
func (r *Recorder) Container() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.container
}

// Start begins a recording session. Starting while one is active is rejected;
// a failed start leaves no partial session behind.
func (r *Recorder) Start(cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording || r.state == StateFinalizing {
		return fmt.Errorf("capture: session already active (%s)", r.state)
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	container := chooseContainer(cfg.Containers)

	// Audio is best-effort: a failed extraction degrades to video-only
	// rather than failing the session.
	var audioWAV string
	var cleanup func()
	if cfg.SourcePath != "" {
		wav, clean, err := extractAudioTrack(cfg.SourcePath, cfg.AudioOffset)
		if err != nil {
			r.logf("audio capture failed, continuing video-only: %v", err)
		} else {
			audioWAV = wav
			cleanup = clean
		}
	}

	sink := newEncodeSink()
	if err := sink.start(cfg, container, audioWAV); err != nil {
		if cleanup != nil {
			cleanup()
		}
		return fmt.Errorf("capture: starting encode sink: %w", err)
	}

	r.sink = sink
	r.container = container
	r.frameSize = cfg.Width * cfg.Height * 4
	r.cleanup = cleanup
	r.failure = nil
	r.state = StateRecording
	return nil
}

// WriteFrame forwards one rendered surface to the sink. It is a no-op when no
// session is active. A sink error here is terminal for the session.
func (r *Recorder) WriteFrame(img *image.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return nil
	}
	if len(img.Pix) != r.frameSize {
		return r.failLocked(fmt.Errorf("capture: frame is %d bytes, session expects %d", len(img.Pix), r.frameSize))
	}
	if err := r.sink.writeFrame(img.Pix); err != nil {
		return r.failLocked(fmt.Errorf("capture: encode sink rejected frame: %w", err))
	}
	return nil
}

// failLocked moves the session to its failed terminal state. Held segments
// are dropped with the sink.
func (r *Recorder) failLocked(err error) error {
	r.sink.abort()
	r.releaseLocked()
	r.state = StateFailed
	r.failure = err
	return err
}

func (r *Recorder) releaseLocked() {
	r.sink = nil
	r.frameSize = 0
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
}

// Stop finalizes the session and returns the assembled artifact. Stopping an
// idle recorder is a no-op returning nil. Finalization blocks until the sink
// drains; the session is in StateFinalizing meanwhile.
func (r *Recorder) Stop() (*Blob, error) {
	r.mu.Lock()
	switch r.state {
	case StateIdle:
		r.mu.Unlock()
		return nil, nil
	case StateFailed:
		err := r.failure
		r.failure = nil
		r.state = StateIdle
		r.mu.Unlock()
		return nil, err
	case StateFinalizing:
		r.mu.Unlock()
		return nil, fmt.Errorf("capture: already finalizing")
	}

	sink := r.sink
	container := r.container
	r.state = StateFinalizing
	r.mu.Unlock()

	segments, err := sink.finish()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked()
	r.state = StateIdle

	if err != nil {
		return nil, fmt.Errorf("capture: finalizing encode: %w", err)
	}

	var size int
	for _, seg := range segments {
		size += len(seg)
	}
	data := make([]byte, 0, size)
	for _, seg := range segments {
		data = append(data, seg...)
	}
	return &Blob{Data: data, Container: container}, nil
}
