package playback

import (
	"io"
	"strings"
	"testing"
)

func TestCountingReaderTracksConsumedBytes(t *testing.T) {
	cr := &countingReader{}
	cr.Reset(strings.NewReader("0123456789"))

	buf := make([]byte, 4)
	if n, err := cr.Read(buf); n != 4 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if got := cr.Pos(); got != 4 {
		t.Fatalf("Pos = %d, want 4", got)
	}

	io.Copy(io.Discard, cr)
	if got := cr.Pos(); got != 10 {
		t.Fatalf("Pos after drain = %d, want 10", got)
	}

	cr.Reset(strings.NewReader("ab"))
	if got := cr.Pos(); got != 0 {
		t.Fatalf("Pos after reset = %d, want 0", got)
	}
}

func TestCountingReaderWithoutSourceIsEOF(t *testing.T) {
	cr := &countingReader{}
	if _, err := cr.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("Read on empty reader = %v, want EOF", err)
	}
}

func TestNewAudioPlayerRejectsSilentSource(t *testing.T) {
	if _, err := NewAudioPlayer("clip.mp4", false); err != ErrNoAudio {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
}
