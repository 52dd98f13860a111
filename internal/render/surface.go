package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// Surface is the 2D drawable target frames are rasterized onto. It backs the
// live terminal preview and is what the capture pipeline samples, so its
// contents after a conversion are the frame of record.
type Surface struct {
	img  *image.RGBA
	face font.Face
}

// NewSurface allocates a surface of the given pixel dimensions.
func NewSurface(width, height int) *Surface {
	return &Surface{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

// Size returns the current pixel dimensions.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the backing image when the dimensions change. The old
// contents never survive a resize; stale pixels from a previous geometry must
// not be rendered against a new one.
func (s *Surface) Resize(width, height int) {
	b := s.img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Clear fills the whole surface with a color.
func (s *Surface) Clear(c asciify.RGB) {
	pix := s.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = 0xff
	}
}

// DrawGlyph rasterizes one monospaced glyph with its top-left at (x, y).
func (s *Surface) DrawGlyph(g rune, x, y int, c asciify.RGB) {
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(rgbaColor(c)),
		Face: s.face,
		Dot:  fixed.P(x, y+s.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(string(g))
}

// DrawImage composites an image onto the surface at the given offset.
func (s *Surface) DrawImage(src image.Image, at image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(at)
	draw.Draw(s.img, r, src, src.Bounds().Min, draw.Over)
}

// Snapshot exports the current contents as a standalone image.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Pix exposes the live backing pixels (RGBA, row-major). The parallel
// renderer writes into this directly.
func (s *Surface) Pix() []byte {
	return s.img.Pix
}

// Stride returns the byte stride of one pixel row.
func (s *Surface) Stride() int {
	return s.img.Stride
}

// At reads back one pixel. Mostly useful in tests.
func (s *Surface) At(x, y int) asciify.RGB {
	off := s.img.PixOffset(x, y)
	return asciify.RGB{R: s.img.Pix[off], G: s.img.Pix[off+1], B: s.img.Pix[off+2]}
}

func rgbaColor(c asciify.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
