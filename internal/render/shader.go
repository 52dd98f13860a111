package render

import "math"

// The parallel path does not rasterize real glyphs. Each brightness bucket
// maps to an analytic silhouette evaluated per output pixel at (u, v), the
// pixel's normalized position within its cell. The ten silhouettes mirror the
// default ramp visually — blank, dot, colon, dash, hyphen-cross, plus, star,
// hash, dense, solid — and their ink coverage is monotonic in bucket order.
const silhouetteCount = 10

// silhouette returns ink coverage in [0,1] for a bucket at (u, v).
func silhouette(bucket int, u, v float64) float64 {
	switch bucket {
	case 0: // blank
		return 0
	case 1: // dot
		return disk(u, v, 0.5, 0.5, 0.13)
	case 2: // colon
		return maxf(disk(u, v, 0.5, 0.28, 0.11), disk(u, v, 0.5, 0.72, 0.11))
	case 3: // dash
		return band(v, 0.5, 0.09) * gate(u, 0.20, 0.80)
	case 4: // hyphen-cross (short vertical stub through a wider dash)
		h := band(v, 0.5, 0.09) * gate(u, 0.18, 0.82)
		stub := band(u, 0.5, 0.09) * gate(v, 0.32, 0.68)
		return maxf(h, stub)
	case 5: // plus
		h := band(v, 0.5, 0.10) * gate(u, 0.12, 0.88)
		vbar := band(u, 0.5, 0.10) * gate(v, 0.12, 0.88)
		return maxf(h, vbar)
	case 6: // star (plus with diagonals)
		p := silhouette(5, u, v)
		d1 := band(u-v, 0, 0.10) * gate(u, 0.15, 0.85)
		d2 := band(u+v, 1, 0.10) * gate(u, 0.15, 0.85)
		return maxf(p, maxf(d1, d2))
	case 7: // hash (two bars each way)
		b1 := band(u, 0.33, 0.09)
		b2 := band(u, 0.67, 0.09)
		b3 := band(v, 0.33, 0.09)
		b4 := band(v, 0.67, 0.09)
		return maxf(maxf(b1, b2), maxf(b3, b4))
	case 8: // dense (solid minus a sparse grid of pinholes)
		if disk(u, v, 0.25, 0.25, 0.07) > 0 || disk(u, v, 0.75, 0.25, 0.07) > 0 ||
			disk(u, v, 0.25, 0.75, 0.07) > 0 || disk(u, v, 0.75, 0.75, 0.07) > 0 {
			return 0
		}
		return 1
	default: // solid
		return 1
	}
}

// disk is 1 inside the circle at (cx, cy) with radius r, 0 outside.
func disk(u, v, cx, cy, r float64) float64 {
	du, dv := u-cx, v-cy
	if math.Sqrt(du*du+dv*dv) <= r {
		return 1
	}
	return 0
}

// band is 1 when x is within halfWidth of center.
func band(x, center, halfWidth float64) float64 {
	if math.Abs(x-center) <= halfWidth {
		return 1
	}
	return 0
}

// gate is 1 when x lies in [lo, hi].
func gate(x, lo, hi float64) float64 {
	if x >= lo && x <= hi {
		return 1
	}
	return 0
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
