package playback

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/pascal-r/glyphcast/internal/capture"
	"github.com/pascal-r/glyphcast/internal/render"
	"github.com/pascal-r/glyphcast/internal/source"
)

// FrameSink receives rendered frames while an export session is active.
// *capture.Recorder satisfies it.
type FrameSink interface {
	Start(capture.Config) error
	WriteFrame(*image.RGBA) error
	Stop() (*capture.Blob, error)
	State() capture.State
}

// ExportResult is the outcome of an export finalized by the controller.
type ExportResult struct {
	Blob *capture.Blob
	Err  error
}

// Controller drives the cooperative per-frame loop: each tick pulls the
// frame the clock calls for, converts it, and forwards the rendered surface
// to the capture pipeline when an export session is active. Pausing is
// checked before a frame starts, never mid-frame.
type Controller struct {
	srcPath string
	src     source.Source
	conv    *render.Converter
	rec     FrameSink
	audio   *AudioPlayer // nil when the source has no audio track
	logf    func(format string, args ...any)

	mu        sync.Mutex
	paused    bool
	ended     bool
	base      time.Duration // wall-clock pacing when there is no audio clock
	resumedAt time.Time
	exporting bool
	expResult *ExportResult
}

// NewController wires the playback loop. audio may be nil; logf may be nil.
func NewController(srcPath string, src source.Source, conv *render.Converter, rec FrameSink, audio *AudioPlayer, logf func(format string, args ...any)) *Controller {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Controller{
		srcPath:   srcPath,
		src:       src,
		conv:      conv,
		rec:       rec,
		audio:     audio,
		logf:      logf,
		resumedAt: time.Now(),
	}
}

// Position returns the current playback position. The audio device is the
// clock when a track is playing; otherwise wall time with pause bookkeeping.
func (c *Controller) Position() time.Duration {
	if c.audio != nil {
		return c.audio.Position()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Controller) positionLocked() time.Duration {
	if c.paused || c.ended {
		return c.base
	}
	return c.base + time.Since(c.resumedAt)
}

// Tick processes at most one frame. It returns false once the run has ended
// (source exhausted or stopped); the caller stops rescheduling then. All
// per-frame failures are contained here — a tick never panics out.
func (c *Controller) Tick() bool {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return false
	}
	if c.paused {
		// Cooperative suspension point: no frame work until resume.
		c.mu.Unlock()
		return true
	}
	exporting := c.exporting
	c.mu.Unlock()

	f, err := c.src.FrameAt(c.Position())
	if f != nil {
		if _, cerr := c.conv.Convert(f); cerr != nil {
			c.logf("frame conversion failed: %v", cerr)
		} else if exporting {
			if werr := c.rec.WriteFrame(c.conv.Surface().Snapshot()); werr != nil {
				c.logf("export frame rejected: %v", werr)
			}
		}
	}

	if errors.Is(err, io.EOF) {
		c.finishRun()
		return false
	}
	if err != nil {
		c.logf("video source error: %v", err)
	}
	return true
}

// finishRun marks the run ended and finalizes an active export.
func (c *Controller) finishRun() {
	c.mu.Lock()
	c.base = c.positionLocked()
	c.ended = true
	wasExporting := c.exporting
	c.exporting = false
	c.mu.Unlock()

	if !wasExporting {
		return
	}
	blob, err := c.rec.Stop()
	c.mu.Lock()
	c.expResult = &ExportResult{Blob: blob, Err: err}
	c.mu.Unlock()
}

// TakeExportResult returns and clears the result of an export the controller
// finalized on end of stream, or nil when there is none.
func (c *Controller) TakeExportResult() *ExportResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.expResult
	c.expResult = nil
	return res
}

// Paused reports whether the loop is suspended.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Ended reports whether the run is over.
func (c *Controller) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Pause suspends the loop before the next frame. In-flight state is kept.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused || c.ended {
		return
	}
	c.base = c.positionLocked()
	c.paused = true
	if c.audio != nil {
		c.audio.Pause()
	}
}

// Resume continues ticking from the current position.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	c.resumedAt = time.Now()
	if c.audio != nil {
		c.audio.Resume()
	}
}

// TogglePause flips between paused and running.
func (c *Controller) TogglePause() {
	if c.Paused() {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Seek moves playback by delta from the current position.
func (c *Controller) Seek(delta time.Duration) error {
	pos := c.Position() + delta
	if pos < 0 {
		pos = 0
	}
	if dur := c.src.Info().Duration; dur > 0 && pos > dur {
		pos = dur
	}

	if err := c.src.Seek(pos); err != nil {
		return err
	}
	if c.audio != nil {
		if err := c.audio.Seek(pos); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.base = pos
	c.resumedAt = time.Now()
	c.ended = false
	c.mu.Unlock()
	return nil
}

// Duration returns the source length, zero when unknown.
func (c *Controller) Duration() time.Duration {
	return c.src.Info().Duration
}

// FPS returns the playback frame rate.
func (c *Controller) FPS() int {
	return c.src.FPS()
}

// Volume returns the audio volume; ok is false when there is no audio track.
func (c *Controller) Volume() (float64, bool) {
	if c.audio == nil {
		return 0, false
	}
	return c.audio.Volume(), true
}

// AdjustVolume nudges the audio volume. No-op without an audio track.
func (c *Controller) AdjustVolume(delta float64) {
	if c.audio != nil {
		c.audio.AdjustVolume(delta)
	}
}

// ExportState reports the capture pipeline's state.
func (c *Controller) ExportState() capture.State {
	return c.rec.State()
}

// Exporting reports whether an export session is active.
func (c *Controller) Exporting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exporting
}

// StartExport opens a recording session capturing the rendered stream from
// the current position, muxing the source's audio track when it has one.
func (c *Controller) StartExport() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exporting {
		return fmt.Errorf("playback: export already active")
	}
	if c.ended {
		return fmt.Errorf("playback: playback has ended")
	}

	w, h := c.src.Dims()
	cfg := capture.Config{
		Width:       w,
		Height:      h,
		FPS:         c.src.FPS(),
		AudioOffset: c.positionLocked(),
	}
	if c.audio != nil {
		cfg.SourcePath = c.srcPath
		cfg.AudioOffset = c.audio.Position()
	}
	if err := c.rec.Start(cfg); err != nil {
		return err
	}
	c.exporting = true
	return nil
}

// StopExport finalizes the active session and returns the artifact. The
// encode boundary is cancelled immediately; assembly blocks until the sink
// drains.
func (c *Controller) StopExport() (*capture.Blob, error) {
	c.mu.Lock()
	c.exporting = false
	c.mu.Unlock()
	return c.rec.Stop()
}

// Close releases the source and the audio player. An active export is
// stopped and its artifact discarded.
func (c *Controller) Close() {
	if c.Exporting() {
		if _, err := c.StopExport(); err != nil {
			c.logf("discarding export on close: %v", err)
		}
	}
	c.src.Close()
	if c.audio != nil {
		c.audio.Close()
	}
}
