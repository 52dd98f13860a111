package asciify

import "math"

// RGB is an 8-bit-per-channel color triple.
type RGB struct {
	R, G, B uint8
}

// Luminance computes perceived brightness in [0,1] using the BT.601
// weights (0.299/0.587/0.114).
func Luminance(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// Gray returns the flat gray implied by a brightness in [0,1].
func Gray(brightness float64) RGB {
	v := uint8(math.Round(clamp01(brightness) * 255))
	return RGB{v, v, v}
}

// Blend mixes a toward b per channel: t=0 yields a, t=1 yields b.
func Blend(a, b RGB, t float64) RGB {
	t = clamp01(t)
	return RGB{
		R: blendChannel(a.R, b.R, t),
		G: blendChannel(a.G, b.G, t),
		B: blendChannel(a.B, b.B, t),
	}
}

func blendChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a)*(1-t) + float64(b)*t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
