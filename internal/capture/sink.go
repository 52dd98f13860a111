package capture

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// encodeSink is the boundary to the external encoder. Tests swap in a fake
// via newEncodeSink.
type encodeSink interface {
	start(cfg Config, container, audioWAV string) error
	writeFrame(pix []byte) error
	// finish closes the frame input, drains the sink, and returns the
	// emitted segments in order.
	finish() ([]Segment, error)
	abort()
}

var newEncodeSink = func() encodeSink { return &ffmpegSink{} }

// Exec seams, swapped in tests (no ffmpeg on CI boxes).
var lookPath = exec.LookPath

// ffmpegSink encodes raw RGBA frames arriving on stdin into a container
// stream on stdout. Streaming through pipes rather than a temp file is what
// lets the recorder hold the output as ordered segments.
type ffmpegSink struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu      sync.Mutex
	segs    []Segment
	readErr error
	done    chan struct{}
}

func (k *ffmpegSink) start(cfg Config, container, audioWAV string) error {
	ffmpeg, err := lookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found (required for export)")
	}

	spec := containerSpecs[container]
	args := []string{
		"-v", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-framerate", fmt.Sprintf("%d", cfg.FPS),
		"-i", "pipe:0",
	}
	if audioWAV != "" {
		args = append(args,
			"-i", audioWAV,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:a", spec.audioCodec,
			"-shortest",
		)
	}
	args = append(args, "-c:v", spec.videoCodec, "-pix_fmt", "yuv420p")
	args = append(args, spec.extraArgs...)
	args = append(args, "-f", spec.format, "pipe:1")

	cmd := exec.Command(ffmpeg, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg encode: %w", err)
	}

	k.cmd = cmd
	k.stdin = stdin
	k.done = make(chan struct{})

	go k.readSegments(stdout)
	return nil
}

// readSegments drains encoded chunks off the sink as they are emitted.
func (k *ffmpegSink) readSegments(stdout io.Reader) {
	defer close(k.done)
	for {
		buf := make([]byte, 64*1024)
		n, err := stdout.Read(buf)
		if n > 0 {
			k.mu.Lock()
			k.segs = append(k.segs, Segment(buf[:n]))
			k.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				k.mu.Lock()
				k.readErr = err
				k.mu.Unlock()
			}
			return
		}
	}
}

func (k *ffmpegSink) writeFrame(pix []byte) error {
	if _, err := k.stdin.Write(pix); err != nil {
		return err
	}
	return nil
}

func (k *ffmpegSink) finish() ([]Segment, error) {
	k.stdin.Close()
	<-k.done // stdout must drain before Wait closes the pipe
	waitErr := k.cmd.Wait()

	k.mu.Lock()
	defer k.mu.Unlock()
	if waitErr != nil {
		return nil, fmt.Errorf("ffmpeg encode failed: %w", waitErr)
	}
	if k.readErr != nil {
		return nil, k.readErr
	}
	if len(k.segs) == 0 {
		return nil, fmt.Errorf("encode sink produced no output")
	}
	return k.segs, nil
}

func (k *ffmpegSink) abort() {
	k.stdin.Close()
	if k.cmd != nil && k.cmd.Process != nil {
		k.cmd.Process.Kill()
		k.cmd.Wait()
	}
	<-k.done
}
