package asciify

import "fmt"

// Frame is one decoded video frame: RGBA bytes, 4 per pixel, row-major,
// top-to-bottom. A Frame is only valid for the duration of one conversion
// call; the decoder reuses the underlying buffer for the next frame.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// NewFrame wraps a raw RGBA buffer. The buffer must hold at least
// width*height*4 bytes.
func NewFrame(pix []byte, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("asciify: invalid frame dimensions %dx%d", width, height)
	}
	if len(pix) < width*height*4 {
		return nil, fmt.Errorf("asciify: frame buffer too short: %d bytes for %dx%d", len(pix), width, height)
	}
	return &Frame{Pix: pix, Width: width, Height: height}, nil
}

// NewSolidFrame builds a frame filled with a single color. Used by the
// synthetic source and tests.
func NewSolidFrame(width, height int, c RGB) *Frame {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = 0xff
	}
	return &Frame{Pix: pix, Width: width, Height: height}
}

// At reads the pixel color at (x, y). Out-of-bounds reads return black.
func (f *Frame) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return RGB{}
	}
	off := (y*f.Width + x) * 4
	return RGB{R: f.Pix[off], G: f.Pix[off+1], B: f.Pix[off+2]}
}
