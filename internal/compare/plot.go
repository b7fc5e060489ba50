package compare

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"opacsplice/internal/fileutil"
	"opacsplice/internal/opacity"
	"opacsplice/internal/textutil"
)

// DefaultLogR lists the panels drawn when Options.LogR is empty.
var DefaultLogR = []float64{-7.0, -4.0, -1.5, 1.0}

const (
	panelColumns = 2
	fileMode     = 0o644
)

var (
	splicedColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	sourceColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Options controls the comparison figure.
type Options struct {
	// LogR selects one panel per value.
	LogR []float64
	// Width and Height size the whole figure.
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults() Options {
	if len(o.LogR) == 0 {
		o.LogR = DefaultLogR
	}
	if o.Width <= 0 {
		o.Width = 10 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 8 * vg.Inch
	}
	return o
}

// Plot writes a PNG with one panel per requested logR. Each panel shows
// opacity against logT for the spliced table, restricted to the source's
// logT range, and for the low-temperature source itself.
func Plot(path string, spliced, source *opacity.Grid, opts Options) error {
	if spliced == nil || source == nil {
		return opacity.Wrap(opacity.ErrFormat, "compare", "plot", "missing grid", nil)
	}
	opts = opts.withDefaults()

	rows := (len(opts.LogR) + panelColumns - 1) / panelColumns
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, panelColumns)
	}
	for i, logR := range opts.LogR {
		p, err := panel(spliced, source, logR)
		if err != nil {
			return err
		}
		plots[i/panelColumns][i%panelColumns] = p
	}

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      panelColumns,
		PadX:      4 * vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] == nil {
				blank := plot.New()
				blank.HideAxes()
				plots[r][c] = blank
			}
		}
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	err := fileutil.WriteAtomic(path, fileMode, func(w io.Writer) error {
		_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("write comparison plot %s: %w", path, err)
	}
	return nil
}

func panel(spliced, source *opacity.Grid, logR float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = textutil.AxisLabel("logR", logR)
	p.X.Label.Text = "log T [K]"
	p.Y.Label.Text = "log κR"
	p.Legend.Top = true
	p.Legend.Left = true

	lo, hi := axisBounds(source.LogT())
	splicedPts, ok := series(spliced, logR, lo, hi)
	if !ok {
		return nil, opacity.Wrap(opacity.ErrFormat, "compare", "plot",
			fmt.Sprintf("spliced table has no logR=%g column", logR), nil)
	}
	if err := addSeries(p, "New table", splicedPts, splicedColor, draw.CrossGlyph{}, nil); err != nil {
		return nil, err
	}
	if sourcePts, ok := series(source, logR, lo, hi); ok {
		dashes := []vg.Length{vg.Points(5), vg.Points(3)}
		if err := addSeries(p, "LA08", sourcePts, sourceColor, draw.PlusGlyph{}, dashes); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func addSeries(p *plot.Plot, name string, pts plotter.XYs, c color.Color, shape draw.GlyphDrawer, dashes []vg.Length) error {
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("%s series: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	line.Dashes = dashes
	points.GlyphStyle.Color = c
	points.GlyphStyle.Shape = shape
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}

// series collects (logT, value) for the column matching logR, keeping rows
// whose logT lies in [lo, hi].
func series(grid *opacity.Grid, logR, lo, hi float64) (plotter.XYs, bool) {
	col, ok := opacity.IndexOf(grid.LogR(), logR)
	if !ok {
		return nil, false
	}
	logT := grid.LogT()
	pts := make(plotter.XYs, 0, len(logT))
	for i, t := range logT {
		if t < lo || t > hi {
			continue
		}
		pts = append(pts, plotter.XY{X: t, Y: grid.At(i+1, col+1)})
	}
	return pts, len(pts) > 0
}

func axisBounds(axis []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range axis {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
