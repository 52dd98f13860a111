package capture

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"
	"sync"
)

// DefaultContainer is used when probing can name no supported muxer.
const DefaultContainer = "matroska"

// defaultContainers is the probe priority order.
var defaultContainers = []string{"webm", "matroska", "mp4", "avi"}

type containerSpec struct {
	format     string // ffmpeg -f value
	ext        string
	videoCodec string
	audioCodec string
	extraArgs  []string
}

var containerSpecs = map[string]containerSpec{
	"webm": {
		format:     "webm",
		ext:        "webm",
		videoCodec: "libvpx-vp9",
		audioCodec: "libopus",
		extraArgs:  []string{"-deadline", "realtime", "-b:v", "2M"},
	},
	"matroska": {
		format:     "matroska",
		ext:        "mkv",
		videoCodec: "libx264",
		audioCodec: "aac",
		extraArgs:  []string{"-preset", "ultrafast", "-crf", "23"},
	},
	"mp4": {
		format:     "mp4",
		ext:        "mp4",
		videoCodec: "libx264",
		audioCodec: "aac",
		// Fragmented output so the muxer can write to a non-seekable pipe.
		extraArgs: []string{"-preset", "ultrafast", "-crf", "23", "-movflags", "frag_keyframe+empty_moov"},
	},
	"avi": {
		format:     "avi",
		ext:        "avi",
		videoCodec: "mpeg4",
		audioCodec: "libmp3lame",
	},
}

func containerExt(container string) string {
	if spec, ok := containerSpecs[container]; ok {
		return spec.ext
	}
	return container
}

var runMuxerProbe = func() ([]byte, error) {
	ffmpeg, err := lookPath("ffmpeg")
	if err != nil {
		return nil, err
	}
	return exec.Command(ffmpeg, "-hide_banner", "-muxers").Output()
}

var (
	muxerOnce sync.Once
	muxerSet  map[string]bool
)

// supportedMuxers queries the sink once for its muxer list.
func supportedMuxers() map[string]bool {
	muxerOnce.Do(func() {
		out, err := runMuxerProbe()
		if err != nil {
			muxerSet = nil
			return
		}
		muxerSet = parseMuxerList(out)
	})
	return muxerSet
}

// parseMuxerList extracts muxer names from `ffmpeg -muxers` output. Lines
// look like " E  webm            WebM".
func parseMuxerList(out []byte) map[string]bool {
	muxers := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	body := false
	for sc.Scan() {
		line := sc.Text()
		if !body {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				body = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], "E") {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			muxers[name] = true
		}
	}
	return muxers
}

// chooseContainer picks the first muxer from the priority list the sink
// supports. An empty probe result, or no match, falls back to the default.
// The caller has no say in what codec that ultimately produces; the chosen
// container is reported back on the blob.
func chooseContainer(preferred []string) string {
	if len(preferred) == 0 {
		preferred = defaultContainers
	}
	supported := supportedMuxers()
	for _, c := range preferred {
		if _, known := containerSpecs[c]; !known {
			continue
		}
		if supported[c] {
			return c
		}
	}
	return DefaultContainer
}
