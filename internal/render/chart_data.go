// Package render turns region surfaces into something a person can look at:
// an interactive go-echarts 3D page, a gonum/plot sheet of orthographic
// projections, or a JSON payload for a browser client.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/ble27/Spherical-Visualizer/internal/region"
)

// DefaultMaxPoints caps the points emitted per surface when the caller passes
// a non-positive limit.
const DefaultMaxPoints = 2500

// Series is one surface reduced to a point cloud. Color is the middle of the
// colorscale; Colors holds each point's colour, graded by Z across the
// surface.
type Series struct {
	Name       string             `json:"name"`
	Color      string             `json:"color"`
	Colorscale []region.ColorStop `json:"colorscale"`
	Opacity    float64            `json:"opacity"`
	ZMin       float64            `json:"z_min"`
	ZMax       float64            `json:"z_max"`
	Rows       int                `json:"rows"`
	Cols       int                `json:"cols"`
	Stride     int                `json:"stride"`
	Points     [][3]float64       `json:"points"`
	Colors     []string           `json:"colors"`
}

// ChartData is the transport-neutral form of a rendered region. Every axis
// spans [-Extent, Extent] so the region keeps its true proportions.
type ChartData struct {
	Title  string        `json:"title"`
	Bounds region.Bounds `json:"bounds"`
	Extent float64       `json:"extent"`
	Series []Series      `json:"series"`
}

// strideFor returns the smallest step that keeps a rows×cols grid, sampled
// along both axes, within maxPoints.
func strideFor(rows, cols, maxPoints int) int {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	cells := rows * cols
	if cells <= maxPoints {
		return 1
	}
	stride := int(math.Ceil(math.Sqrt(float64(cells) / float64(maxPoints))))
	for ceilDiv(rows, stride)*ceilDiv(cols, stride) > maxPoints {
		stride++
	}
	return stride
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// axisExtent pads the largest coordinate by 5%, with a floor of 1 for regions
// that collapse to the origin.
func axisExtent(surfaces []region.Surface) float64 {
	var m float64
	for _, s := range surfaces {
		m = math.Max(m, s.Extent())
	}
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 1
	}
	return m * 1.05
}

// PrepareChartData samples every surface down to at most maxPoints points and
// attaches its colour and opacity.
func PrepareChartData(b region.Bounds, surfaces []region.Surface, maxPoints int) *ChartData {
	data := &ChartData{
		Title:  b.Title(),
		Bounds: b,
		Extent: axisExtent(surfaces),
		Series: make([]Series, 0, len(surfaces)),
	}
	for _, s := range surfaces {
		rows, cols := s.X.Dims()
		stride := strideFor(rows, cols, maxPoints)
		zlo, zhi := zSpan(s.Z)
		size := ceilDiv(rows, stride) * ceilDiv(cols, stride)
		pts := make([][3]float64, 0, size)
		colors := make([]string, 0, size)
		for r := 0; r < rows; r += stride {
			for c := 0; c < cols; c += stride {
				z := s.Z.At(r, c)
				pts = append(pts, [3]float64{s.X.At(r, c), s.Y.At(r, c), z})
				colors = append(colors, rgba(colorAt(s.Style.Colorscale, normalize(z, zlo, zhi)), s.Style.Opacity))
			}
		}
		data.Series = append(data.Series, Series{
			Name:       s.Name,
			Color:      s.Style.MidColor(),
			Colorscale: s.Style.Colorscale,
			Opacity:    s.Style.Opacity,
			ZMin:       zlo,
			ZMax:       zhi,
			Rows:       rows,
			Cols:       cols,
			Stride:     stride,
			Points:     pts,
			Colors:     colors,
		})
	}
	return data
}

// RenderJSON writes data as indented JSON.
func RenderJSON(w io.Writer, data *ChartData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode chart data: %w", err)
	}
	return nil
}
