package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/sample"
)

// Projection formats accepted by RenderProjections.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// gridLines is the number of mesh lines drawn per direction on each surface.
const gridLines = 12

// projection picks two coordinates of a surface.
type projection struct {
	title  string
	xLabel string
	yLabel string
	x, y   func(s region.Surface) sample.Grid
}

var projections = []projection{
	{"Top (XY)", "X", "Y", func(s region.Surface) sample.Grid { return s.X }, func(s region.Surface) sample.Grid { return s.Y }},
	{"Front (XZ)", "X", "Z", func(s region.Surface) sample.Grid { return s.X }, func(s region.Surface) sample.Grid { return s.Z }},
	{"Side (YZ)", "Y", "Z", func(s region.Surface) sample.Grid { return s.Y }, func(s region.Surface) sample.Grid { return s.Z }},
}

// FormatFromPath maps a file extension to a projection format.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported projection format %q (want .png or .svg)", ext)
	}
}

// RenderProjections draws the XY, XZ and YZ projections of each surface's
// mesh lines side by side and writes the sheet in format. Each line takes
// the surface's colorscale colour at its mean height. size is the height of
// one panel; the sheet is three panels wide.
func RenderProjections(w io.Writer, b region.Bounds, surfaces []region.Surface, format string, size vg.Length) error {
	if size <= 0 {
		size = 6 * vg.Inch
	}

	var c vg.CanvasWriterTo
	switch format {
	case FormatPNG:
		c = vgimg.PngCanvas{Canvas: vgimg.New(3*size, size)}
	case FormatSVG:
		c = vgsvg.New(3*size, size)
	default:
		return fmt.Errorf("unsupported projection format %q", format)
	}

	pad := axisExtent(surfaces)
	row := make([]*plot.Plot, 0, len(projections))
	for _, pr := range projections {
		p, err := projectionPlot(pr, surfaces, pad)
		if err != nil {
			return err
		}
		row = append(row, p)
	}
	row[0].Title.Text = b.Title() + "\n" + row[0].Title.Text

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(row),
		PadX:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align([][]*plot.Plot{row}, tiles, draw.New(c))
	for j, p := range row {
		p.Draw(canvases[0][j])
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write projections: %w", err)
	}
	return nil
}

func projectionPlot(pr projection, surfaces []region.Surface, pad float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pr.title
	p.X.Label.Text = pr.xLabel
	p.Y.Label.Text = pr.yLabel
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad
	p.Add(plotter.NewGrid())

	for _, s := range surfaces {
		lines, err := meshLines(pr.x(s), pr.y(s), s.Z)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", s.Name, pr.title, err)
		}
		zlo, zhi := zSpan(s.Z)
		for i, ml := range lines {
			line, err := plotter.NewLine(ml.pts)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", s.Name, pr.title, err)
			}
			line.Color = colorAt(s.Style.Colorscale, normalize(ml.meanZ, zlo, zhi))
			line.Width = vg.Points(1)
			p.Add(line)
			if i == 0 {
				p.Legend.Add(s.Name, line)
			}
		}
	}
	return p, nil
}

// meshLine is one polyline of a surface's mesh and the mean height along it.
type meshLine struct {
	pts   plotter.XYs
	meanZ float64
}

// meshLines returns roughly gridLines row polylines and gridLines column
// polylines through the paired grids gx, gy, each tagged with its mean gz.
func meshLines(gx, gy, gz sample.Grid) ([]meshLine, error) {
	if !sample.SameShape(gx, gy) || !sample.SameShape(gx, gz) {
		return nil, fmt.Errorf("grid shapes differ")
	}
	if gx.Empty() {
		return nil, nil
	}
	xs, ys, zs := gx.Rows(), gy.Rows(), gz.Rows()
	rows, cols := gx.Dims()
	rowStep := max(1, rows/gridLines)
	colStep := max(1, cols/gridLines)

	var lines []meshLine
	for r := 0; r < rows; r += rowStep {
		ml := meshLine{pts: make(plotter.XYs, cols)}
		for c := 0; c < cols; c++ {
			ml.pts[c] = plotter.XY{X: xs[r][c], Y: ys[r][c]}
			ml.meanZ += zs[r][c] / float64(cols)
		}
		lines = append(lines, ml)
	}
	for c := 0; c < cols; c += colStep {
		ml := meshLine{pts: make(plotter.XYs, rows)}
		for r := 0; r < rows; r++ {
			ml.pts[r] = plotter.XY{X: xs[r][c], Y: ys[r][c]}
			ml.meanZ += zs[r][c] / float64(rows)
		}
		lines = append(lines, ml)
	}
	return lines, nil
}
