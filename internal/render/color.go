package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/sample"
)

var grey = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// parseRGB reads a CSS "rgb(r, g, b)" colour. Anything else is grey.
func parseRGB(s string) color.RGBA {
	var r, g, b uint8
	compact := strings.ReplaceAll(s, " ", "")
	if _, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
		return grey
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// rgba renders c with the given opacity as a CSS colour.
func rgba(c color.RGBA, opacity float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, opacity)
}

// colorAt interpolates the colorscale at t, clamped to [0,1]. Stops are
// assumed sorted by position.
func colorAt(scale []region.ColorStop, t float64) color.RGBA {
	if len(scale) == 0 {
		return grey
	}
	if math.IsNaN(t) {
		t = 0.5
	}
	t = math.Max(0, math.Min(1, t))
	if t <= scale[0].Position {
		return parseRGB(scale[0].Color)
	}
	for i := 1; i < len(scale); i++ {
		lo, hi := scale[i-1], scale[i]
		if t > hi.Position {
			continue
		}
		f := 0.0
		if span := hi.Position - lo.Position; span > 0 {
			f = (t - lo.Position) / span
		}
		a, b := parseRGB(lo.Color), parseRGB(hi.Color)
		mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
		return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
	}
	return parseRGB(scale[len(scale)-1].Color)
}

// zSpan returns the smallest and largest value in g, or zeros when g is empty.
func zSpan(g sample.Grid) (lo, hi float64) {
	if g.Empty() {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	rows, cols := g.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := g.At(r, c)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi
}

// normalize maps z from [lo, hi] to [0, 1]; a flat range maps to the middle.
func normalize(z, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0.5
	}
	return (z - lo) / (hi - lo)
}
