package render

import (
	"sync"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// Converter is the frame conversion orchestrator. It owns the settings
// snapshot and the target surface, and picks the render path per frame:
// accelerated when the startup probe succeeded and settings allow it, with
// per-frame fallback to the reference path on a transient failure. A probe
// failure at construction pins the session to the reference path for good.
type Converter struct {
	ref   Renderer
	accel Renderer // nil when the capability probe failed

	mu       sync.Mutex
	settings Settings

	surface *Surface
	logf    func(format string, args ...any)
}

// NewConverter wires a converter with the given initial settings. logf
// receives capability and fallback diagnostics; pass nil to discard them.
func NewConverter(st Settings, logf func(format string, args ...any)) (*Converter, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	c := &Converter{
		ref:      NewReference(),
		settings: st,
		surface:  NewSurface(1, 1),
		logf:     logf,
	}

	accel, err := NewAccelerated()
	if err != nil {
		// Capability absent: degrade silently, log once, never retry.
		c.logf("accelerated renderer unavailable, using cpu path: %v", err)
	} else {
		c.accel = accel
	}
	return c, nil
}

// Convert renders the frame onto the owned surface and reports which path
// produced it. Per-frame accelerated failures are contained here: the frame
// is redone on the reference path and the accelerated path stays eligible.
func (c *Converter) Convert(f *asciify.Frame) (Path, error) {
	st := c.Settings() // one snapshot per frame, taken at frame start

	if c.accel != nil && st.Path == PreferAccelerated {
		err := c.accel.Render(f, st, c.surface)
		if err == nil {
			return PathAccelerated, nil
		}
		c.logf("accelerated render failed for this frame, cpu fallback: %v", err)
	}

	if err := c.ref.Render(f, st, c.surface); err != nil {
		return PathCPU, err
	}
	return PathCPU, nil
}

// Accelerated reports whether the parallel path survived the startup probe.
func (c *Converter) Accelerated() bool {
	return c.accel != nil
}

// Settings returns the current snapshot.
func (c *Converter) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings merges a partial update into the snapshot. It applies from
// the next frame on; an in-flight frame keeps the snapshot it started with.
func (c *Converter) UpdateSettings(p Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	merged := c.settings.Apply(p)
	if err := merged.Validate(); err != nil {
		return err
	}
	c.settings = merged
	return nil
}

// Surface returns the target surface the converter renders onto.
func (c *Converter) Surface() *Surface {
	return c.surface
}
