package asciify

// Cell is one grid position reduced to a representative color and glyph.
// Cells are computed fresh per frame and never cached across frames.
type Cell struct {
	Color      RGB
	Brightness float64
	Glyph      int
}

// SampleCell reduces the cellSize square of frame pixels at origin (ox, oy)
// to a single Cell: per-channel mean color over the in-bounds pixels, BT.601
// brightness, and a glyph index from the ramp. Edge cells average only the
// pixels actually inside the frame. The mean color is blended against the
// brightness gray by accuracy (0 = gray, 1 = full color).
//
// ok is false when no pixel of the cell lies inside the frame.
func SampleCell(f *Frame, ox, oy, cellSize int, accuracy float64, ramp Ramp) (Cell, bool) {
	x0, y0 := ox, oy
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	x1, y1 := ox+cellSize, oy+cellSize
	if x1 > f.Width {
		x1 = f.Width
	}
	if y1 > f.Height {
		y1 = f.Height
	}
	if x0 >= x1 || y0 >= y1 {
		return Cell{}, false
	}

	var sumR, sumG, sumB int
	for y := y0; y < y1; y++ {
		off := (y*f.Width + x0) * 4
		for x := x0; x < x1; x++ {
			sumR += int(f.Pix[off])
			sumG += int(f.Pix[off+1])
			sumB += int(f.Pix[off+2])
			off += 4
		}
	}

	n := (x1 - x0) * (y1 - y0)
	mean := RGB{
		R: uint8((sumR + n/2) / n),
		G: uint8((sumG + n/2) / n),
		B: uint8((sumB + n/2) / n),
	}
	brightness := Luminance(mean)

	return Cell{
		Color:      Blend(Gray(brightness), mean, accuracy),
		Brightness: brightness,
		Glyph:      ramp.GlyphIndex(brightness),
	}, true
}

// Grid is the per-frame 2D arrangement of cells, row-major.
type Grid struct {
	Cols  int
	Rows  int
	Cells []Cell
}

// CellAt returns the cell at (col, row).
func (g *Grid) CellAt(col, row int) Cell {
	return g.Cells[row*g.Cols+col]
}

// BuildGrid samples every cell of the frame. Dimensions are always recomputed
// from the current frame size and cellSize (floor division), so a grid from a
// previous geometry can never leak into a new one.
func BuildGrid(f *Frame, cellSize int, accuracy float64, ramp Ramp) *Grid {
	cols := f.Width / cellSize
	rows := f.Height / cellSize
	g := &Grid{Cols: cols, Rows: rows, Cells: make([]Cell, 0, cols*rows)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell, ok := SampleCell(f, col*cellSize, row*cellSize, cellSize, accuracy, ramp)
			if !ok {
				// Remainder rounding put the cell fully outside the frame.
				continue
			}
			g.Cells = append(g.Cells, cell)
		}
	}
	return g
}
