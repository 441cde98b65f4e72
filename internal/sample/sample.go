// Package sample provides uniformly spaced 1D samples and the paired 2D
// coordinate grids built from them.
package sample

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidArgument is returned when a sample count is below one.
var ErrInvalidArgument = errors.New("sample: invalid argument")

// Linspace returns n values evenly spaced from start to end inclusive.
// A single sample is placed at start. start and end may be equal or reversed.
func Linspace(start, end float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("linspace: n must be at least 1, got %d: %w", n, ErrInvalidArgument)
	}
	if n == 1 {
		return []float64{start}, nil
	}

	vals := floats.Span(make([]float64, n), start, end)
	// Pin the endpoints so the last sample is end regardless of step rounding.
	vals[0] = start
	vals[n-1] = end
	return vals, nil
}

// Meshgrid broadcasts xs across rows and ys across columns. Both grids have
// len(ys) rows and len(xs) columns: gx.At(r, c) == xs[c], gy.At(r, c) == ys[r].
func Meshgrid(xs, ys []float64) (gx, gy Grid) {
	rows, cols := len(ys), len(xs)
	if rows == 0 || cols == 0 {
		return Grid{}, Grid{}
	}

	xData := make([]float64, 0, rows*cols)
	yData := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		xData = append(xData, xs...)
		for c := 0; c < cols; c++ {
			yData = append(yData, ys[r])
		}
	}
	return newGrid(rows, cols, xData), newGrid(rows, cols, yData)
}
