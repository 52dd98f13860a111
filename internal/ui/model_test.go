package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pascal-r/glyphcast/internal/asciify"
	"github.com/pascal-r/glyphcast/internal/capture"
	"github.com/pascal-r/glyphcast/internal/playback"
	"github.com/pascal-r/glyphcast/internal/render"
	"github.com/pascal-r/glyphcast/internal/source"
	"github.com/pascal-r/glyphcast/internal/termview"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	src := source.NewSynthetic(10, 10, 10, time.Minute, asciify.RGB{R: 255})
	st := render.DefaultSettings()
	st.Path = render.CPUOnly
	conv, err := render.NewConverter(st, nil)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	ctrl := playback.NewController("clip.mp4", src, conv, capture.NewRecorder(nil), nil, nil)
	return New(ctrl, conv, termview.NewViewWithMode(termview.ColorOff), "clip")
}

func TestSpaceTogglesPause(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	if !m.paused {
		t.Fatal("space did not pause")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	if m.paused {
		t.Fatal("space did not resume")
	}
}

func TestQuitKeyStopsProgram(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	if !m.quitting {
		t.Fatal("q did not set quitting")
	}
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
	if m.View() != "" {
		t.Fatal("quitting view should be empty")
	}
}

func TestCellSizeKeysStayInBounds(t *testing.T) {
	m := newTestModel(t)

	start := m.conv.Settings().CellSize
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	m = next.(Model)
	if got := m.conv.Settings().CellSize; got != start+1 {
		t.Fatalf("] changed cell size to %d, want %d", got, start+1)
	}

	for i := 0; i < 64; i++ {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
		m = next.(Model)
	}
	if got := m.conv.Settings().CellSize; got != 1 {
		t.Fatalf("[ drove cell size to %d, want floor of 1", got)
	}
}

func TestColorKeyCyclesAccuracy(t *testing.T) {
	m := newTestModel(t)

	want := []float64{0.5, 0, 1}
	for _, acc := range want {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
		m = next.(Model)
		if got := m.conv.Settings().ColorAccuracy; got != acc {
			t.Fatalf("color accuracy = %v, want %v", got, acc)
		}
	}
}

func TestPathKeyTogglesRenderPath(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = next.(Model)
	if got := m.conv.Settings().Path; got != render.PreferAccelerated {
		t.Fatalf("g left path at %v", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = next.(Model)
	if got := m.conv.Settings().Path; got != render.CPUOnly {
		t.Fatalf("second g left path at %v", got)
	}
}

func TestTickAdvancesAndReschedules(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(Model)

	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("tick on a live run should reschedule")
	}
	if m.frame == "" {
		t.Fatal("tick did not render a frame")
	}
	if !strings.Contains(m.View(), "playing") {
		t.Fatal("view is missing the playing status")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"My Clip", "My Clip"},
		{`a/b\c:d`, "abcd"},
		{"  ", "recording"},
		{"<>|?*", "recording"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSaveBlobRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(cwd)

	blob := &capture.Blob{Data: []byte("data"), Container: "matroska"}
	name, err := SaveBlob(blob, "clip")
	if err != nil {
		t.Fatalf("SaveBlob: %v", err)
	}
	if name != "clip.mkv" {
		t.Fatalf("saved as %q, want clip.mkv", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil || string(data) != "data" {
		t.Fatalf("read back %q, %v", data, err)
	}

	if _, err := SaveBlob(blob, "clip"); err == nil {
		t.Fatal("second save should refuse to overwrite")
	}
}

func TestProgressBarClamps(t *testing.T) {
	bar := renderProgressBar(2, 20)
	if strings.Contains(bar, "─") {
		t.Fatalf("overfull bar has empty segments: %q", bar)
	}
	bar = renderProgressBar(-1, 20)
	if strings.Contains(bar, "━") {
		t.Fatalf("negative bar has filled segments: %q", bar)
	}
}

func TestSmoothBarConverges(t *testing.T) {
	b := newSmoothBar(30)
	var pos float64
	for i := 0; i < 300; i++ {
		pos = b.step(1)
	}
	if pos < 0.99 || pos > 1.01 {
		t.Fatalf("spring settled at %v, want ~1", pos)
	}
}
