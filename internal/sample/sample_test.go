package sample

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		n          int
	}{
		{"unit interval", 0, 1, 10},
		{"two samples", -3, 7, 2},
		{"reversed", 5, -5, 11},
		{"pi span", 0, 3.141592653589793, 100},
		{"fractional", 0.1, 0.7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals, err := Linspace(tt.start, tt.end, tt.n)
			require.NoError(t, err)
			require.Len(t, vals, tt.n)
			assert.Equal(t, tt.start, vals[0])
			assert.Equal(t, tt.end, vals[tt.n-1])
		})
	}
}

func TestLinspace_Spacing(t *testing.T) {
	vals, err := Linspace(0, 1, 5)
	require.NoError(t, err)

	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if diff := cmp.Diff(want, vals, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Linspace(0, 1, 5) mismatch (-want +got):\n%s", diff)
	}
}

func TestLinspace_Monotonic(t *testing.T) {
	up, err := Linspace(-2, 2, 50)
	require.NoError(t, err)
	for i := 1; i < len(up); i++ {
		if up[i] <= up[i-1] {
			t.Fatalf("increasing sequence broke at %d: %v <= %v", i, up[i], up[i-1])
		}
	}

	down, err := Linspace(2, -2, 50)
	require.NoError(t, err)
	for i := 1; i < len(down); i++ {
		if down[i] >= down[i-1] {
			t.Fatalf("decreasing sequence broke at %d: %v >= %v", i, down[i], down[i-1])
		}
	}
}

func TestLinspace_Constant(t *testing.T) {
	vals, err := Linspace(1.5, 1.5, 8)
	require.NoError(t, err)
	for i, v := range vals {
		assert.Equal(t, 1.5, v, "index %d", i)
	}
}

func TestLinspace_SingleSample(t *testing.T) {
	vals, err := Linspace(3, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, vals)
}

func TestLinspace_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		vals, err := Linspace(0, 1, n)
		assert.Nil(t, vals)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Linspace(0, 1, %d) error = %v, want ErrInvalidArgument", n, err)
		}
	}
}

func TestMeshgrid_Shape(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{10, 20}

	gx, gy := Meshgrid(xs, ys)

	rows, cols := gx.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.True(t, SameShape(gx, gy))
}

func TestMeshgrid_Broadcast(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{-1, 0, 5}

	gx, gy := Meshgrid(xs, ys)

	wantX := [][]float64{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3, 4}}
	wantY := [][]float64{{-1, -1, -1, -1}, {0, 0, 0, 0}, {5, 5, 5, 5}}
	if diff := cmp.Diff(wantX, gx.Rows()); diff != "" {
		t.Errorf("grid X mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantY, gy.Rows()); diff != "" {
		t.Errorf("grid Y mismatch (-want +got):\n%s", diff)
	}
}

func TestMeshgrid_Empty(t *testing.T) {
	gx, gy := Meshgrid(nil, []float64{1, 2})
	assert.True(t, gx.Empty())
	assert.True(t, gy.Empty())
	assert.Empty(t, gx.Rows())
}

func TestGrid_RowsIsCopy(t *testing.T) {
	gx, _ := Meshgrid([]float64{1, 2}, []float64{0})
	rows := gx.Rows()
	rows[0][0] = 99

	assert.Equal(t, 1.0, gx.At(0, 0))
}

func TestNewGrid(t *testing.T) {
	g := NewGrid(2, 3, []float64{1, 2, 3, 4, 5, 6})

	rows, cols := g.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 6.0, g.At(1, 2))
}

func TestNewGrid_BadLengthPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewGrid(2, 2, []float64{1, 2, 3})
	})
}

func TestSameShape(t *testing.T) {
	a, b := Meshgrid([]float64{1, 2}, []float64{1})
	c, _ := Meshgrid([]float64{1}, []float64{1, 2})
	assert.True(t, SameShape(a, b))
	assert.False(t, SameShape(a, c))
	assert.True(t, SameShape(Grid{}, Grid{}))
}
