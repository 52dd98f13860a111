package render

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// ErrUnavailable means the parallel path cannot run in this environment. The
// converter treats it as a capability-absent condition for the whole session.
var ErrUnavailable = errors.New("render: accelerated path unavailable")

// EnvDisableAccel disables the parallel path when set, regardless of probing.
const EnvDisableAccel = "GLYPHCAST_NO_ACCEL"

// Program is the compiled per-pixel evaluation: the silhouette table plus the
// bucket mapping parameters. Compilation happens once at startup; a failed
// compile disables the path for the session, never retried per frame.
type Program struct {
	buckets int
}

// CompileProgram validates the silhouette table and builds the program.
func CompileProgram() (*Program, error) {
	// The table must produce strictly increasing ink coverage so the
	// procedural output preserves the ramp's ordering.
	prev := -1.0
	for b := 0; b < silhouetteCount; b++ {
		cov := sampledCoverage(b, 32)
		if cov <= prev {
			return nil, fmt.Errorf("%w: silhouette %d breaks ink ordering", ErrUnavailable, b)
		}
		prev = cov
	}
	return &Program{buckets: silhouetteCount}, nil
}

// sampledCoverage integrates a silhouette's ink over an n×n sample grid.
func sampledCoverage(bucket, n int) float64 {
	var sum float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			u := (float64(x) + 0.5) / float64(n)
			v := (float64(y) + 0.5) / float64(n)
			sum += silhouette(bucket, u, v)
		}
	}
	return sum / float64(n*n)
}

// Accelerated is the data-parallel path. The whole grid computation is
// inlined into a per-output-pixel evaluation dispatched across a worker pool,
// one row band per worker, every pixel independent — the same shape as a
// fragment-shader draw over a full-screen quad. It samples the single center
// pixel of each cell rather than averaging, trading fidelity for parallelism.
type Accelerated struct {
	prog    *Program
	workers int
}

// NewAccelerated probes the environment and compiles the program. An error
// here means the path is unavailable for the session; callers fall back to
// the reference path permanently.
func NewAccelerated() (*Accelerated, error) {
	if os.Getenv(EnvDisableAccel) != "" {
		return nil, fmt.Errorf("%w: disabled via %s", ErrUnavailable, EnvDisableAccel)
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 {
		return nil, fmt.Errorf("%w: no parallel execution contexts", ErrUnavailable)
	}
	prog, err := CompileProgram()
	if err != nil {
		return nil, err
	}
	return &Accelerated{prog: prog, workers: workers}, nil
}

// Path reports PathAccelerated.
func (*Accelerated) Path() Path {
	return PathAccelerated
}

// Render evaluates every output pixel in parallel and paints the surface.
func (a *Accelerated) Render(f *asciify.Frame, st Settings, dst *Surface) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if f.Width < 1 || f.Height < 1 {
		return fmt.Errorf("render: empty frame %dx%d", f.Width, f.Height)
	}

	dst.Resize(f.Width, f.Height)
	pix := dst.Pix()
	stride := dst.Stride()

	rowsPerBand := (f.Height + a.workers - 1) / a.workers
	var wg sync.WaitGroup
	for band := 0; band < a.workers; band++ {
		y0 := band * rowsPerBand
		if y0 >= f.Height {
			break
		}
		y1 := y0 + rowsPerBand
		if y1 > f.Height {
			y1 = f.Height
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			a.renderBand(f, st, pix, stride, y0, y1)
		}(y0, y1)
	}
	wg.Wait()
	return nil
}

// renderBand evaluates the shader for every pixel of rows [y0, y1).
func (a *Accelerated) renderBand(f *asciify.Frame, st Settings, pix []byte, stride, y0, y1 int) {
	cell := st.CellSize
	for y := y0; y < y1; y++ {
		cellY := y / cell
		cy := cellY*cell + cell/2
		if cy > f.Height-1 {
			cy = f.Height - 1
		}
		v := (float64(y%cell) + 0.5) / float64(cell)
		off := y * stride
		for x := 0; x < f.Width; x++ {
			cellX := x / cell
			cx := cellX*cell + cell/2
			if cx > f.Width-1 {
				cx = f.Width - 1
			}

			// Single center-pixel sample; the fidelity trade-off against
			// the reference path's true mean.
			sampled := f.At(cx, cy)
			brightness := asciify.Luminance(sampled)

			bucket := int(brightness * float64(a.prog.buckets-1))
			if bucket > a.prog.buckets-1 {
				bucket = a.prog.buckets - 1
			}

			u := (float64(x%cell) + 0.5) / float64(cell)
			cov := silhouette(bucket, u, v)

			ink := asciify.Blend(asciify.Gray(brightness), sampled, st.ColorAccuracy)
			out := asciify.Blend(st.Background, ink, cov)

			pix[off] = out.R
			pix[off+1] = out.G
			pix[off+2] = out.B
			pix[off+3] = 0xff
			off += 4
		}
	}
}
