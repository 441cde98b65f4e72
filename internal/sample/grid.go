package sample

import (
	"gonum.org/v1/gonum/mat"
)

// Grid is a dense R×C coordinate grid. The zero value is an empty 0×0 grid.
type Grid struct {
	m *mat.Dense
}

func newGrid(rows, cols int, data []float64) Grid {
	return Grid{m: mat.NewDense(rows, cols, data)}
}

// Dims returns the number of rows and columns.
func (g Grid) Dims() (rows, cols int) {
	if g.m == nil {
		return 0, 0
	}
	return g.m.Dims()
}

// At returns the value at row r, column c. It panics when out of range.
func (g Grid) At(r, c int) float64 {
	return g.m.At(r, c)
}

// Empty reports whether the grid holds no cells.
func (g Grid) Empty() bool {
	rows, cols := g.Dims()
	return rows == 0 || cols == 0
}

// Rows returns a copy of the grid as a slice of rows.
func (g Grid) Rows() [][]float64 {
	rows, cols := g.Dims()
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]float64, cols)
		mat.Row(out[r], r, g.m)
	}
	return out
}

// SameShape reports whether two grids have identical dimensions.
func SameShape(a, b Grid) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

// NewGrid wraps data, laid out row-major, as a rows×cols grid. It panics
// when len(data) != rows*cols or either dimension is zero.
func NewGrid(rows, cols int, data []float64) Grid {
	return newGrid(rows, cols, data)
}
