package capture

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"
)

// fakeSink records frames and emits canned segments.
type fakeSink struct {
	started   bool
	container string
	audioWAV  string
	frames    int
	writeErr  error
	finishErr error
	aborted   bool
	segs      []Segment
}

func (f *fakeSink) start(cfg Config, container, audioWAV string) error {
	f.started = true
	f.container = container
	f.audioWAV = audioWAV
	return nil
}

func (f *fakeSink) writeFrame(pix []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.frames++
	f.segs = append(f.segs, Segment(fmt.Sprintf("seg%d", f.frames)))
	return nil
}

func (f *fakeSink) finish() ([]Segment, error) {
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	return f.segs, nil
}

func (f *fakeSink) abort() { f.aborted = true }

func withFakeSink(t *testing.T, sink encodeSink) {
	t.Helper()
	prev := newEncodeSink
	newEncodeSink = func() encodeSink { return sink }
	t.Cleanup(func() { newEncodeSink = prev })
}

func testFrame(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func testConfig() Config {
	return Config{Width: 4, Height: 4, FPS: 10}
}

func TestRecorderHappyPath(t *testing.T) {
	sink := &fakeSink{}
	withFakeSink(t, sink)

	r := NewRecorder(nil)
	if err := r.Start(testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.State() != StateRecording {
		t.Fatalf("state = %v, want recording", r.State())
	}

	for i := 0; i < 30; i++ {
		if err := r.WriteFrame(testFrame(4, 4)); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}

	blob, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if blob == nil || len(blob.Data) == 0 {
		t.Fatal("expected a non-empty artifact blob")
	}
	if blob.Container == "" {
		t.Fatal("blob must report the container actually used")
	}
	if _, known := containerSpecs[blob.Container]; !known {
		t.Fatalf("container %q is not one of the probed types", blob.Container)
	}
	if r.State() != StateIdle {
		t.Fatalf("state after stop = %v, want idle", r.State())
	}
	if sink.frames != 30 {
		t.Fatalf("sink received %d frames, want 30", sink.frames)
	}
}

func TestRecorderSegmentsConcatenateInOrder(t *testing.T) {
	sink := &fakeSink{}
	withFakeSink(t, sink)

	r := NewRecorder(nil)
	if err := r.Start(testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.WriteFrame(testFrame(4, 4)); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	blob, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := string(blob.Data); got != "seg1seg2seg3" {
		t.Fatalf("assembled blob = %q, want segments in emission order", got)
	}
}

func TestRecorderStopWhileIdleIsNoOp(t *testing.T) {
	r := NewRecorder(nil)
	blob, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop on idle recorder errored: %v", err)
	}
	if blob != nil {
		t.Fatal("Stop on idle recorder must return nil")
	}
}

func TestRecorderRejectsDoubleStart(t *testing.T) {
	withFakeSink(t, &fakeSink{})

	r := NewRecorder(nil)
	if err := r.Start(testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(testConfig()); err == nil {
		t.Fatal("second Start while recording must be rejected")
	}
}

func TestRecorderWriteFrameWhileIdleIsNoOp(t *testing.T) {
	sink := &fakeSink{}
	withFakeSink(t, sink)

	r := NewRecorder(nil)
	if err := r.WriteFrame(testFrame(4, 4)); err != nil {
		t.Fatalf("WriteFrame while idle errored: %v", err)
	}
	if sink.frames != 0 {
		t.Fatal("idle recorder must not forward frames")
	}
}

func TestRecorderSinkFailureDiscardsSegments(t *testing.T) {
	sink := &fakeSink{writeErr: errors.New("pipe broke")}
	withFakeSink(t, sink)

	r := NewRecorder(nil)
	if err := r.Start(testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.WriteFrame(testFrame(4, 4)); err == nil {
		t.Fatal("expected sink failure to surface")
	}
	if r.State() != StateFailed {
		t.Fatalf("state = %v, want failed", r.State())
	}
	if !sink.aborted {
		t.Fatal("failed session must abort the sink")
	}

	blob, err := r.Stop()
	if blob != nil {
		t.Fatal("failed session must not produce a partial artifact")
	}
	if err == nil {
		t.Fatal("caller must be notified the export did not complete")
	}
	if r.State() != StateIdle {
		t.Fatalf("state after acknowledging failure = %v, want idle", r.State())
	}
}

func TestRecorderMismatchedFrameSizeFails(t *testing.T) {
	withFakeSink(t, &fakeSink{})

	r := NewRecorder(nil)
	if err := r.Start(testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.WriteFrame(testFrame(8, 8)); err == nil {
		t.Fatal("expected mismatched frame size to fail the session")
	}
	if r.State() != StateFailed {
		t.Fatalf("state = %v, want failed", r.State())
	}
}

func TestRecorderAudioFailureDegradesToVideoOnly(t *testing.T) {
	sink := &fakeSink{}
	withFakeSink(t, sink)

	prev := extractAudioTrack
	extractAudioTrack = func(string, time.Duration) (string, func(), error) {
		return "", nil, errors.New("no audio stream")
	}
	t.Cleanup(func() { extractAudioTrack = prev })

	var logged bool
	r := NewRecorder(func(string, ...any) { logged = true })
	cfg := testConfig()
	cfg.SourcePath = "movie.mp4"
	if err := r.Start(cfg); err != nil {
		t.Fatalf("audio failure must not fail the session: %v", err)
	}
	if sink.audioWAV != "" {
		t.Fatal("degraded session must be video-only")
	}
	if !logged {
		t.Fatal("degradation should be logged")
	}
}

func TestRecorderAudioTrackIsPassedToSink(t *testing.T) {
	sink := &fakeSink{}
	withFakeSink(t, sink)

	prev := extractAudioTrack
	cleaned := false
	extractAudioTrack = func(path string, offset time.Duration) (string, func(), error) {
		return "/tmp/fake/audio.wav", func() { cleaned = true }, nil
	}
	t.Cleanup(func() { extractAudioTrack = prev })

	r := NewRecorder(nil)
	cfg := testConfig()
	cfg.SourcePath = "movie.mp4"
	if err := r.Start(cfg); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sink.audioWAV != "/tmp/fake/audio.wav" {
		t.Fatalf("sink audio = %q, want extracted wav path", sink.audioWAV)
	}
	if _, err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !cleaned {
		t.Fatal("temp audio must be cleaned up after the session")
	}
}

func TestParseMuxerList(t *testing.T) {
	out := []byte(`Muxers:
 D. = Demuxing supported
 .E = Muxing supported
 --
  E avi             AVI (Audio Video Interleaved)
 DE matroska        Matroska
  E mp4             MP4 (MPEG-4 Part 14)
  E webm            WebM
`)
	got := parseMuxerList(out)
	for _, name := range []string{"avi", "matroska", "mp4", "webm"} {
		if !got[name] {
			t.Errorf("muxer %q missing from parse result", name)
		}
	}
	if got["Muxers:"] || got["--"] {
		t.Error("header lines leaked into the muxer set")
	}
}

func TestChooseContainerFallsBackToDefault(t *testing.T) {
	// The probe is process-cached; unknown names simply miss.
	if c := chooseContainer([]string{"not-a-container"}); c != DefaultContainer {
		t.Fatalf("chooseContainer = %q, want default %q", c, DefaultContainer)
	}
}

func TestBlobFilenameFollowsContainer(t *testing.T) {
	b := &Blob{Container: "matroska"}
	if got := b.Filename("out"); got != "out.mkv" {
		t.Errorf("Filename = %q, want out.mkv", got)
	}
	b = &Blob{Container: "webm"}
	if got := b.Filename("out"); got != "out.webm" {
		t.Errorf("Filename = %q, want out.webm", got)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{Width: 0, Height: 4, FPS: 10},
		{Width: 4, Height: 0, FPS: 10},
		{Width: 4, Height: 4, FPS: 0},
	}
	for _, cfg := range bad {
		if err := cfg.validate(); err == nil {
			t.Errorf("config %+v should not validate", cfg)
		}
	}
	if err := testConfig().validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
