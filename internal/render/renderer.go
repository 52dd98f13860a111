package render

import "github.com/pascal-r/glyphcast/internal/asciify"

// Path tags which execution model produced a frame.
type Path int

const (
	// PathCPU is the sequential reference path: exact per-cell sampling.
	PathCPU Path = iota
	// PathAccelerated is the data-parallel path: per-pixel procedural
	// evaluation, approximate glyph silhouettes.
	PathAccelerated
)

// String returns the path name.
func (p Path) String() string {
	switch p {
	case PathCPU:
		return "cpu"
	case PathAccelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// Renderer rasterizes one frame onto the surface under a settings snapshot.
// Both variants honor the same contract; they differ in execution model and
// glyph fidelity (exact selection vs. procedural approximation).
type Renderer interface {
	Render(f *asciify.Frame, st Settings, dst *Surface) error
	Path() Path
}
