package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/pascal-r/glyphcast/internal/util"
)

const (
	audioSampleRate   = 44100
	audioChannelCount = 2
	audioBitDepth     = 2 // 16-bit = 2 bytes
	audioBytesPerSec  = audioSampleRate * audioChannelCount * audioBitDepth
)

// ErrNoAudio means the source has no audio stream to play.
var ErrNoAudio = errors.New("playback: no audio stream")

// countingReader tracks bytes consumed by the audio device, which is the
// playback clock.
type countingReader struct {
	mu     sync.Mutex
	reader io.Reader
	pos    int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	cr.mu.Lock()
	r := cr.reader
	cr.mu.Unlock()
	if r == nil {
		return 0, io.EOF
	}
	n, err := r.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) Reset(r io.Reader) {
	cr.mu.Lock()
	cr.reader = r
	cr.pos = 0
	cr.mu.Unlock()
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   audioSampleRate,
			ChannelCount: audioChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// AudioPlayer plays the source file's audio track through the system output.
// ffmpeg decodes any container to s16le PCM on a pipe; seeking restarts the
// subprocess at the new position.
type AudioPlayer struct {
	path string

	mu        sync.Mutex
	cmd       *exec.Cmd
	cancel    context.CancelFunc
	counter   *countingReader
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	seekBase  time.Duration // position of PCM byte 0 of the current decode
	volume    float64
	paused    bool
	closed    bool
}

// NewAudioPlayer starts decoding and playing the file's audio track.
// Returns ErrNoAudio when the file has none.
func NewAudioPlayer(path string, hasAudio bool) (*AudioPlayer, error) {
	if !hasAudio {
		return nil, ErrNoAudio
	}
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("audio output unavailable: %w", err)
	}

	p := &AudioPlayer{
		path:    path,
		counter: &countingReader{},
		otoCtx:  ctx,
		volume:  0.8,
	}
	if err := p.startDecode(0); err != nil {
		return nil, err
	}

	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()
	return p, nil
}

// startDecode launches the ffmpeg PCM decode from the given position.
// Callers hold no lock during construction; the remaining callers do.
func (p *AudioPlayer) startDecode(from time.Duration) error {
	p.stopDecode()

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found (required for audio playback)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	args := []string{"-v", "quiet"}
	if from > 0 {
		args = append(args, "-ss", util.FormatTimestamp(from))
	}
	args = append(args,
		"-i", p.path,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", audioSampleRate),
		"-ac", fmt.Sprintf("%d", audioChannelCount),
		"-vn",
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
		return fmt.Errorf("starting ffmpeg audio decode: %w", err)
	}

	p.cmd = cmd
	p.cancel = cancel
	p.seekBase = from
	p.counter.Reset(stdout)
	return nil
}

func (p *AudioPlayer) stopDecode() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.cmd != nil {
		p.cmd.Wait()
		p.cmd = nil
	}
	p.counter.Reset(nil)
}

// Position returns the playback clock: the seek base plus consumed PCM.
func (p *AudioPlayer) Position() time.Duration {
	p.mu.Lock()
	base := p.seekBase
	p.mu.Unlock()
	secs := float64(p.counter.Pos()) / float64(audioBytesPerSec)
	return base + time.Duration(secs*float64(time.Second))
}

// Pause suspends audio output.
func (p *AudioPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Resume continues audio output.
func (p *AudioPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	}
}

// Seek restarts decoding at an absolute position.
func (p *AudioPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("audio player closed")
	}
	if pos < 0 {
		pos = 0
	}
	if err := p.startDecode(pos); err != nil {
		return err
	}

	// Recreate the device player to flush buffered PCM.
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
	return nil
}

// Volume returns the current volume in [0,1].
func (p *AudioPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// AdjustVolume nudges the volume by delta, clamped to [0,1].
func (p *AudioPlayer) AdjustVolume(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.volume + delta
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// Close releases the decode subprocess and the output device player.
func (p *AudioPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.stopDecode()
}
