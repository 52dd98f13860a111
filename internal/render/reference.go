package render

import (
	"fmt"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// Reference is the sequential sampling path. It computes the full cell grid
// (true per-cell mean color, exact glyph selection) and rasterizes each cell's
// glyph at its origin over a background-cleared surface.
type Reference struct{}

// NewReference returns the reference renderer. It is always available.
func NewReference() *Reference {
	return &Reference{}
}

// Path reports PathCPU.
func (*Reference) Path() Path {
	return PathCPU
}

// Render converts the frame and paints the result.
func (*Reference) Render(f *asciify.Frame, st Settings, dst *Surface) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if f.Width < 1 || f.Height < 1 {
		return fmt.Errorf("render: empty frame %dx%d", f.Width, f.Height)
	}

	dst.Resize(f.Width, f.Height)
	dst.Clear(st.Background)

	grid := asciify.BuildGrid(f, st.CellSize, st.ColorAccuracy, st.Ramp)
	i := 0
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			cell := grid.Cells[i]
			i++
			if cell.Glyph == 0 && st.Ramp[0] == ' ' {
				// Space carries no ink; the cleared background already shows.
				continue
			}
			dst.DrawGlyph(st.Ramp[cell.Glyph], col*st.CellSize, row*st.CellSize, cell.Color)
		}
	}
	return nil
}
