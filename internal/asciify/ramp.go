package asciify

import "errors"

// Ramp is an ordered glyph sequence from least to most visual ink.
type Ramp []rune

// DefaultRamp is the stock 10-glyph ramp, space through dense glyph.
// Chosen for good perceptual spacing in monospace fonts.
var DefaultRamp = Ramp(" .:-=+*#%@")

// ErrEmptyRamp is returned when a conversion is configured with no glyphs.
var ErrEmptyRamp = errors.New("asciify: ramp must not be empty")

// Validate reports whether the ramp is usable.
func (r Ramp) Validate() error {
	if len(r) == 0 {
		return ErrEmptyRamp
	}
	return nil
}

// GlyphIndex maps a brightness to an index into the ramp. Brightness outside
// [0,1] is clamped, never rejected. Higher brightness selects the later
// (denser) glyph; the ramp order is applied as-is, not inverted.
//
// The ramp must be non-empty; see Validate.
func (r Ramp) GlyphIndex(brightness float64) int {
	idx := int(clamp01(brightness) * float64(len(r)-1))
	if idx < 0 {
		return 0
	}
	if idx > len(r)-1 {
		return len(r) - 1
	}
	return idx
}

// Glyph returns the ramp glyph for a brightness.
func (r Ramp) Glyph(brightness float64) rune {
	return r[r.GlyphIndex(brightness)]
}
