package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Probe holds stream metadata from ffprobe.
type Probe struct {
	Width    int
	Height   int
	FPS      float64
	Duration time.Duration
	HasVideo bool
	HasAudio bool
}

type ffprobeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"` // e.g. "30/1" or "24000/1001"
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeMedia uses ffprobe to get stream metadata for a media file.
// HasVideo is false for audio-only files.
func ProbeMedia(path string) (Probe, error) {
	ffprobe, err := lookPath("ffprobe")
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	cmd.Stdin = nil

	output, err := cmd.Output()
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (Probe, error) {
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Probe{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	durSec, _ := strconv.ParseFloat(result.Format.Duration, 64)
	p := Probe{Duration: time.Duration(durSec * float64(time.Second))}

	for _, s := range result.Streams {
		switch s.CodecType {
		case "audio":
			p.HasAudio = true
		case "video":
			if p.HasVideo {
				continue
			}
			p.HasVideo = true
			p.Width = s.Width
			p.Height = s.Height
			p.FPS = parseFraction(s.AvgFrameRate)
			if p.FPS <= 0 {
				p.FPS = parseFraction(s.RFrameRate)
			}
			if p.FPS <= 0 {
				p.FPS = 24 // sensible fallback
			}
		}
	}
	return p, nil
}

// parseFraction parses "num/den" into a float64.
func parseFraction(s string) float64 {
	parts := splitFraction(s)
	if len(parts) != 2 {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// splitFraction splits "a/b" into ["a", "b"].
func splitFraction(s string) []string {
	for i, c := range s {
		if c == '/' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
