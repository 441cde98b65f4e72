package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ble27/Spherical-Visualizer/internal/region"
)

// HTMLOptions controls the interactive page. Zero fields fall back to the
// go-echarts defaults, except MaxPoints which falls back to DefaultMaxPoints.
type HTMLOptions struct {
	Width      string
	Height     string
	Theme      string
	AssetsHost string
	MaxPoints  int
}

// RenderHTML writes a standalone go-echarts page showing every surface as a
// 3D point cloud graded through its colorscale by height, on axes of equal
// length. The series colour, used by the legend, is the colorscale middle.
func RenderHTML(w io.Writer, b region.Bounds, surfaces []region.Surface, o HTMLOptions) error {
	data := PrepareChartData(b, surfaces, o.MaxPoints)
	pad := data.Extent

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Spherical Region", Theme: o.Theme, Width: o.Width, Height: o.Height, AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: data.Title, Subtitle: fmt.Sprintf("surfaces=%d", len(data.Series))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Min: -pad, Max: pad}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Min: -pad, Max: pad}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z", Min: -pad, Max: pad}),
	)

	for _, s := range data.Series {
		pts := make([]opts.Chart3DData, 0, len(s.Points))
		for i, p := range s.Points {
			pts = append(pts, opts.Chart3DData{
				Value:     []interface{}{p[0], p[1], p[2]},
				ItemStyle: &opts.ItemStyle{Color: s.Colors[i]},
			})
		}
		scatter.AddSeries(s.Name, pts,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: rgba(parseRGB(s.Color), s.Opacity)}),
		)
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render 3d chart: %w", err)
	}
	return nil
}
