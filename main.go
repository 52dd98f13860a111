package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pascal-r/glyphcast/internal/capture"
	"github.com/pascal-r/glyphcast/internal/playback"
	"github.com/pascal-r/glyphcast/internal/render"
	"github.com/pascal-r/glyphcast/internal/source"
	"github.com/pascal-r/glyphcast/internal/termview"
	"github.com/pascal-r/glyphcast/internal/ui"
)

func main() {
	maxWidth := flag.Int("width", 480, "max decoded frame width in pixels")
	cellSize := flag.Int("cell", 8, "pixels per glyph cell")
	cpuOnly := flag.Bool("cpu", false, "disable the parallel render path")
	mute := flag.Bool("mute", false, "play without audio")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glyphcast [flags] <video file>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is a directory\n", path)
		os.Exit(1)
	}

	logf := func(string, ...any) {}
	if os.Getenv("GLYPHCAST_DEBUG") != "" {
		f, err := tea.LogToFile("glyphcast-debug.log", "glyphcast")
		if err == nil {
			defer f.Close()
			logf = log.Printf
		}
	}

	probe, err := source.ProbeMedia(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !probe.HasVideo {
		fmt.Fprintf(os.Stderr, "Error: %s has no video stream\n", path)
		os.Exit(1)
	}

	src, err := source.Open(path, *maxWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	settings := render.DefaultSettings()
	settings.CellSize = *cellSize
	if *cpuOnly {
		settings.Path = render.CPUOnly
	}
	conv, err := render.NewConverter(settings, logf)
	if err != nil {
		src.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var audio *playback.AudioPlayer
	if !*mute {
		audio, err = playback.NewAudioPlayer(path, probe.HasAudio)
		if err != nil && !errors.Is(err, playback.ErrNoAudio) {
			logf("audio unavailable, playing silent: %v", err)
		}
		if err != nil {
			audio = nil
		}
	}

	rec := capture.NewRecorder(logf)
	ctrl := playback.NewController(path, src, conv, rec, audio, logf)

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model := ui.New(ctrl, conv, termview.NewView(), title)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		ctrl.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
