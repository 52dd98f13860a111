// Package termview turns rendered surfaces into terminal strings. Color
// terminals get half-block packing ("▀" with fg/bg pairs, two pixel rows per
// cell row); everything else falls back to plain brightness characters.
package termview

import (
	"image"
	"image/draw"
	"strings"

	"github.com/nfnt/resize"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// View converts surface images into terminal frames.
type View struct {
	mode ColorMode
	sb   strings.Builder // reused across frames
}

// NewView builds a view for the current terminal's capabilities.
func NewView() *View {
	return &View{mode: DetectColorMode()}
}

// NewViewWithMode builds a view with an explicit color mode.
func NewViewWithMode(mode ColorMode) *View {
	return &View{mode: mode}
}

// Mode returns the active color mode.
func (v *View) Mode() ColorMode { return v.mode }

// Render downscales the surface image to fit a termW x termH cell area and
// emits it as one terminal frame.
func (v *View) Render(img *image.RGBA, termW, termH int) string {
	b := img.Bounds()
	cellW, cellH, pixW, pixH := FitDims(termW, termH, b.Dx(), b.Dy(), v.mode != ColorOff)
	if cellW == 0 || cellH == 0 {
		return ""
	}

	scaled := toRGBA(resize.Resize(uint(pixW), uint(pixH), img, resize.Bilinear))

	v.sb.Reset()
	// Worst case a color escape pair per cell plus the glyph.
	v.sb.Grow(cellW * cellH * 24)

	if v.mode == ColorOff {
		v.renderASCII(scaled, cellW, cellH)
	} else {
		v.renderHalfBlock(scaled, cellW, cellH)
	}
	return v.sb.String()
}

// renderHalfBlock writes "▀" cells with fg = top pixel and bg = bottom pixel,
// eliding escapes that repeat the previous cell's colors.
func (v *View) renderHalfBlock(img *image.RGBA, cellW, cellH int) {
	h := img.Bounds().Dy()
	var lastFg, lastBg string

	for row := 0; row < cellH; row++ {
		for col := 0; col < cellW; col++ {
			top := pixelAt(img, col, row*2)
			var bot asciify.RGB
			if row*2+1 < h {
				bot = pixelAt(img, col, row*2+1)
			}

			fg := v.mode.fg(top.R, top.G, top.B)
			bg := v.mode.bg(bot.R, bot.G, bot.B)
			if fg != lastFg {
				v.sb.WriteString(fg)
				lastFg = fg
			}
			if bg != lastBg {
				v.sb.WriteString(bg)
				lastBg = bg
			}
			v.sb.WriteString("▀")
		}
		v.sb.WriteString(ansiReset)
		lastFg, lastBg = "", ""
		if row < cellH-1 {
			v.sb.WriteByte('\n')
		}
	}
}

// renderASCII maps each pixel to a brightness character from the default ramp.
func (v *View) renderASCII(img *image.RGBA, cellW, cellH int) {
	for row := 0; row < cellH; row++ {
		for col := 0; col < cellW; col++ {
			px := pixelAt(img, col, row)
			v.sb.WriteRune(asciify.DefaultRamp.Glyph(asciify.Luminance(px)))
		}
		if row < cellH-1 {
			v.sb.WriteByte('\n')
		}
	}
}

func pixelAt(img *image.RGBA, x, y int) asciify.RGB {
	b := img.Bounds()
	if x >= b.Dx() {
		x = b.Dx() - 1
	}
	if y >= b.Dy() {
		y = b.Dy() - 1
	}
	off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
	return asciify.RGB{R: img.Pix[off], G: img.Pix[off+1], B: img.Pix[off+2]}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// FitDims computes the terminal cell area and the pixel dimensions to scale
// the surface to, preserving the source aspect ratio. Half-block rendering
// packs two pixel rows per cell row; plain output gets one, with the ~1:2
// cell aspect compensated by widening.
func FitDims(termW, termH, srcW, srcH int, halfBlock bool) (cellW, cellH, pixW, pixH int) {
	if termW <= 0 || termH <= 0 || srcW <= 0 || srcH <= 0 {
		return 0, 0, 0, 0
	}

	aspect := float64(srcW) / float64(srcH)

	if halfBlock {
		budgetH := termH * 2
		avail := float64(termW) * 0.5 / float64(budgetH)
		if aspect > avail {
			pixW = termW
			pixH = int(float64(termW) * 0.5 / aspect)
			if pixH > budgetH {
				pixH = budgetH
			}
		} else {
			pixH = budgetH
			pixW = int(float64(budgetH) * aspect / 0.5)
			if pixW > termW {
				pixW = termW
			}
		}
		pixW, pixH = atLeast(pixW, 4), atLeast(pixH, 2)
		return pixW, (pixH + 1) / 2, pixW, pixH
	}

	avail := float64(termW) / (float64(termH) * 2)
	if aspect > avail {
		pixW = termW
		pixH = int(float64(termW) / aspect / 2)
		if pixH > termH {
			pixH = termH
		}
	} else {
		pixH = termH
		pixW = int(float64(termH) * aspect * 2)
		if pixW > termW {
			pixW = termW
		}
	}
	pixW, pixH = atLeast(pixW, 4), atLeast(pixH, 2)
	return pixW, pixH, pixW, pixH
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
