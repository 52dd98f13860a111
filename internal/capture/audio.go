package capture

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-audio/wav"

	"github.com/pascal-r/glyphcast/internal/util"
)

// Exec and filesystem seams for the audio extraction path.
var (
	runFFmpeg = func(name string, args ...string) ([]byte, error) {
		cmd := exec.Command(name, args...)
		cmd.Stdin = nil
		return cmd.CombinedOutput()
	}
	mkdirTemp = os.MkdirTemp
	removeAll = os.RemoveAll
)

// extractAudioTrack pulls the audio stream out of the source file into a temp
// WAV, starting at offset, and verifies it actually holds a decodable track.
// The cleanup func removes the temp dir. Swappable in tests.
var extractAudioTrack = func(path string, offset time.Duration) (string, func(), error) {
	ffmpeg, err := lookPath("ffmpeg")
	if err != nil {
		return "", nil, fmt.Errorf("ffmpeg not found (required for audio capture)")
	}

	tmpDir, err := mkdirTemp("", "glyphcast-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}
	cleanup := func() { removeAll(tmpDir) }

	outPath := filepath.Join(tmpDir, "audio.wav")
	args := []string{"-y"}
	if offset > 0 {
		args = append(args, "-ss", util.FormatTimestamp(offset))
	}
	args = append(args, "-i", path, "-vn", "-acodec", "pcm_s16le", outPath)

	if output, err := runFFmpeg(ffmpeg, args...); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("extracting audio track: %w\n%s", err, output)
	}

	if err := validateWAV(outPath); err != nil {
		cleanup()
		return "", nil, err
	}
	return outPath, cleanup, nil
}

// validateWAV confirms the extraction produced at least one usable track.
func validateWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening extracted audio: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("source yielded no usable audio track")
	}
	return nil
}
