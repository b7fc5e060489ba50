package opacity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Grid is a rectangular opacity table. Row 0 holds the logR header with an
// unused zero in column 0; column 0 holds logT for rows >= 1. Cells that a
// source did not provide stay zero.
type Grid struct {
	data *mat.Dense
}

// NewGrid allocates a zero-filled grid with nLogT data rows and nLogR data
// columns, plus the header row and label column.
func NewGrid(nLogT, nLogR int) (*Grid, error) {
	if nLogT < 1 || nLogR < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive: logT=%d logR=%d", nLogT, nLogR)
	}
	return &Grid{data: mat.NewDense(nLogT+1, nLogR+1, nil)}, nil
}

// NewGridWithAxes allocates a grid and fills its header row and logT column.
func NewGridWithAxes(logT, logR []float64) (*Grid, error) {
	g, err := NewGrid(len(logT), len(logR))
	if err != nil {
		return nil, err
	}
	for i, v := range logT {
		g.data.Set(i+1, 0, v)
	}
	for j, v := range logR {
		g.data.Set(0, j+1, v)
	}
	return g, nil
}

// Rows returns the total row count including the header row.
func (g *Grid) Rows() int {
	r, _ := g.data.Dims()
	return r
}

// Cols returns the total column count including the logT column.
func (g *Grid) Cols() int {
	_, c := g.data.Dims()
	return c
}

// NumLogT returns the number of data rows.
func (g *Grid) NumLogT() int { return g.Rows() - 1 }

// NumLogR returns the number of data columns.
func (g *Grid) NumLogR() int { return g.Cols() - 1 }

// At returns the cell at (row, col) in grid coordinates.
func (g *Grid) At(row, col int) float64 { return g.data.At(row, col) }

// Set stores v at (row, col) in grid coordinates.
func (g *Grid) Set(row, col int, v float64) { g.data.Set(row, col, v) }

// SetRow copies values into row starting at column 0. Values beyond the
// grid width are rejected; missing trailing cells are left untouched.
func (g *Grid) SetRow(row int, values []float64) error {
	if len(values) > g.Cols() {
		return fmt.Errorf("row %d has %d values, grid width is %d", row, len(values), g.Cols())
	}
	for j, v := range values {
		g.data.Set(row, j, v)
	}
	return nil
}

// LogT returns a copy of the logT axis (column 0, rows 1..).
func (g *Grid) LogT() []float64 {
	out := make([]float64, g.NumLogT())
	for i := range out {
		out[i] = g.data.At(i+1, 0)
	}
	return out
}

// LogR returns a copy of the logR header (row 0, columns 1..).
func (g *Grid) LogR() []float64 {
	out := make([]float64, g.NumLogR())
	for j := range out {
		out[j] = g.data.At(0, j+1)
	}
	return out
}

// Values returns a copy of the opacity cells of row (columns 1..).
func (g *Grid) Values(row int) []float64 {
	out := make([]float64, g.NumLogR())
	for j := range out {
		out[j] = g.data.At(row, j+1)
	}
	return out
}

// Row returns a copy of the full row including column 0.
func (g *Grid) Row(row int) []float64 {
	return mat.Row(nil, row, g.data)
}

// RowForLogT returns the grid row whose logT equals v exactly.
func (g *Grid) RowForLogT(v float64) (int, bool) {
	for i := 1; i < g.Rows(); i++ {
		if g.data.At(i, 0) == v {
			return i, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{data: mat.DenseCopyOf(g.data)}
}

// Equal reports whether both grids have the same shape and identical cells.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	return mat.Equal(g.data, other.data)
}

// GridFromMatrix copies m, laid out in grid coordinates, into a new grid.
func GridFromMatrix(m mat.Matrix) (*Grid, error) {
	r, c := m.Dims()
	if r < 2 || c < 2 {
		return nil, fmt.Errorf("grid dimensions must be positive: rows=%d cols=%d", r, c)
	}
	return &Grid{data: mat.DenseCopyOf(m)}, nil
}
