package termview

import (
	"image"
	"strings"
	"testing"
)

func solidImage(w, h int, r, g, b uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 0xff
	}
	return img
}

func TestRenderASCIIFallback(t *testing.T) {
	v := NewViewWithMode(ColorOff)
	out := v.Render(solidImage(8, 8, 255, 255, 255), 8, 4)

	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colorless output contains escapes: %q", out)
	}
	if !strings.Contains(out, "@") {
		t.Fatalf("white frame should map to the brightest glyph, got %q", out)
	}
	if strings.ContainsRune(out, '▀') {
		t.Fatal("ascii fallback emitted half blocks")
	}
}

func TestRenderBlackFrameIsBlank(t *testing.T) {
	v := NewViewWithMode(ColorOff)
	out := v.Render(solidImage(8, 8, 0, 0, 0), 8, 4)

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimRight(line, " ") != "" {
			t.Fatalf("black frame produced ink: %q", line)
		}
	}
}

func TestRenderHalfBlockElidesRepeatedColors(t *testing.T) {
	v := NewViewWithMode(ColorTrue)
	out := v.Render(solidImage(16, 16, 200, 10, 10), 16, 8)

	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected multiple rows, got %d", len(lines))
	}
	// A uniform row needs exactly one fg and one bg escape plus the reset.
	first := lines[0]
	if n := strings.Count(first, "\x1b[38;2;"); n != 1 {
		t.Fatalf("uniform row emitted %d foreground escapes, want 1", n)
	}
	if n := strings.Count(first, "\x1b[48;2;"); n != 1 {
		t.Fatalf("uniform row emitted %d background escapes, want 1", n)
	}
	if !strings.HasSuffix(first, ansiReset) {
		t.Fatal("row does not end with a reset")
	}
	if !strings.ContainsRune(first, '▀') {
		t.Fatal("half-block row has no block glyphs")
	}
}

func TestFitDims(t *testing.T) {
	cases := []struct {
		name                     string
		termW, termH, srcW, srcH int
		halfBlock                bool
		wantCellW, wantCellH     int
	}{
		{"square into half block", 80, 24, 100, 100, true, 80, 20},
		{"wide source fits width", 40, 40, 400, 100, true, 40, 3},
		{"square ascii widens", 80, 24, 100, 100, false, 48, 24},
		{"degenerate terminal", 0, 24, 100, 100, false, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cellW, cellH, pixW, pixH := FitDims(tc.termW, tc.termH, tc.srcW, tc.srcH, tc.halfBlock)
			if cellW != tc.wantCellW || cellH != tc.wantCellH {
				t.Fatalf("cells = %dx%d, want %dx%d", cellW, cellH, tc.wantCellW, tc.wantCellH)
			}
			if tc.wantCellW == 0 {
				return
			}
			if tc.halfBlock {
				if pixW != cellW || pixH > cellH*2 {
					t.Fatalf("pixels = %dx%d inconsistent with %dx%d cells", pixW, pixH, cellW, cellH)
				}
			} else if pixW != cellW || pixH != cellH {
				t.Fatalf("plain mode pixels %dx%d should equal cells %dx%d", pixW, pixH, cellW, cellH)
			}
		})
	}
}

func TestColorModeEscapes(t *testing.T) {
	if got := ColorTrue.fg(1, 2, 3); got != "\x1b[38;2;1;2;3m" {
		t.Fatalf("truecolor fg = %q", got)
	}
	if got := Color256.fg(255, 255, 255); got != "\x1b[38;5;231m" {
		t.Fatalf("256 white fg = %q", got)
	}
	if got := ColorOff.fg(255, 0, 0); got != "" {
		t.Fatalf("off mode fg = %q", got)
	}
	if got := ColorANSI.bg(0, 0, 0); got != "\x1b[40m" {
		t.Fatalf("ansi16 black bg = %q", got)
	}
}
