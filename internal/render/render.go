// Package render draws chart configs with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/air-quality-eda/internal/chart"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PanelCols is the number of charts per panel row.
const PanelCols = 3

var errNoSeries = errors.New("chart has no series")

var glyphs = []draw.GlyphDrawer{draw.CircleGlyph{}, draw.SquareGlyph{}, draw.TriangleGlyph{}}

// Panel draws configs as a grid of PanelCols columns and writes a PNG.
func Panel(w io.Writer, configs []chart.Config, width, height vg.Length) error {
	if len(configs) == 0 {
		return errNoSeries
	}
	rows := (len(configs) + PanelCols - 1) / PanelCols
	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, PanelCols)
		for i := range plots[j] {
			blank := plot.New()
			blank.HideAxes()
			plots[j][i] = blank
		}
	}
	for i, c := range configs {
		p, err := Plot(c)
		if err != nil {
			return fmt.Errorf("chart %d %q: %w", i+1, c.Title, err)
		}
		plots[i/PanelCols][i%PanelCols] = p
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	t := draw.Tiles{
		Rows:      rows,
		Cols:      PanelCols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, t, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write panel png: %w", err)
	}
	return nil
}

// Single draws one chart as a PNG.
func Single(w io.Writer, c chart.Config, width, height vg.Length) error {
	p, err := Plot(c)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// Plot converts a config into a gonum plot.
func Plot(c chart.Config) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XAxis
	p.Y.Label.Text = c.YAxis
	p.Legend.Top = true
	if c.ShowGrid {
		p.Add(plotter.NewGrid())
	}

	var err error
	switch c.Kind {
	case chart.KindBar:
		err = addBars(p, c)
	case chart.KindScatter:
		err = addScatter(p, c)
	case chart.KindLine:
		err = addLines(p, c)
	case chart.KindHeatmap:
		err = addHeatmap(p, c)
	case chart.KindBoxPlot:
		err = addBoxes(p, c)
	case chart.KindGroupedBar:
		err = addGroupedBars(p, c)
	case chart.KindHorizontalBar:
		err = addHorizontalBars(p, c)
	case chart.KindPie:
		err = addPie(p, c)
	default:
		err = fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}
	if !c.ShowLegend {
		p.Legend = plot.NewLegend()
	}
	return p, nil
}

func addBars(p *plot.Plot, c chart.Config) error {
	if len(c.Series) == 0 {
		return errNoSeries
	}
	s := c.Series[0]
	values := plotter.Values(s.Values)
	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return err
	}
	bars.Color = withAlpha(parseColor(s.Color), 0.7)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(c.Categories...)
	rotateX(p)

	if c.Reference != nil {
		ref := c.Reference.Value
		line := plotter.NewFunction(func(float64) float64 { return ref })
		line.Color = parseColor(c.Reference.Color)
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		line.XMin = -0.5
		line.XMax = float64(len(values)) - 0.5
		p.Add(line)
		p.Legend.Add(c.Reference.Label, line)
	}

	if c.ValueLabels {
		labels := plotter.XYLabels{
			XYs:    make(plotter.XYs, len(values)),
			Labels: make([]string, len(values)),
		}
		for i, v := range values {
			labels.XYs[i] = plotter.XY{X: float64(i), Y: v + 5}
			labels.Labels[i] = strconv.FormatFloat(v, 'f', 0, 64)
		}
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return err
		}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = text.XCenter
		}
		p.Add(l)
	}
	return nil
}

func addScatter(p *plot.Plot, c chart.Config) error {
	if len(c.Series) == 0 {
		return errNoSeries
	}
	s := c.Series[0]
	pts := xys(s.X, s.Values)
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = withAlpha(parseColor(s.Color), 0.6)
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	if c.Trend != nil && len(s.X) > 0 {
		trend := plotter.NewFunction(c.Trend.At)
		trend.Color = parseColor(chart.Red)
		trend.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		trend.XMin = floats.Min(s.X)
		trend.XMax = floats.Max(s.X)
		p.Add(trend)
	}
	return nil
}

func addLines(p *plot.Plot, c chart.Config) error {
	if len(c.Series) == 0 {
		return errNoSeries
	}
	for i, s := range c.Series {
		l, pts, err := plotter.NewLinePoints(xys(s.X, s.Values))
		if err != nil {
			return err
		}
		col := parseColor(s.Color)
		l.Color = col
		l.Width = vg.Points(2)
		pts.GlyphStyle.Color = col
		pts.GlyphStyle.Shape = glyphs[i%len(glyphs)]
		p.Add(l, pts)
		p.Legend.Add(s.Name, l, pts)
	}
	return nil
}

// matrixGrid adapts a square matrix to plotter.GridXYZ. Row r is drawn at
// y = r, column c at x = c.
type matrixGrid [][]float64

func (m matrixGrid) Dims() (c, r int)   { return len(m), len(m) }
func (m matrixGrid) Z(c, r int) float64 { return m[r][c] }
func (m matrixGrid) X(c int) float64    { return float64(c) }
func (m matrixGrid) Y(r int) float64    { return float64(r) }

func addHeatmap(p *plot.Plot, c chart.Config) error {
	if len(c.Matrix) == 0 {
		return errNoSeries
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	h := plotter.NewHeatMap(matrixGrid(c.Matrix), cm.Palette(255))
	h.Min, h.Max = -1, 1
	p.Add(h)

	n := len(c.Matrix)
	labels := plotter.XYLabels{XYs: make(plotter.XYs, 0, n*n), Labels: make([]string, 0, n*n)}
	for r := range c.Matrix {
		for col, v := range c.Matrix[r] {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(col), Y: float64(r)})
			labels.Labels = append(labels.Labels, strconv.FormatFloat(v, 'f', 2, 64))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(l)
	p.NominalX(c.Categories...)
	p.NominalY(c.Categories...)
	return nil
}

func addBoxes(p *plot.Plot, c chart.Config) error {
	if len(c.Distributions) == 0 {
		return errNoSeries
	}
	for i, d := range c.Distributions {
		b, err := plotter.NewBoxPlot(vg.Points(12), float64(i), plotter.Values(d))
		if err != nil {
			return err
		}
		b.FillColor = withAlpha(parseColor(chart.Blue), 0.3)
		p.Add(b)
	}
	p.NominalX(c.Categories...)
	rotateX(p)
	return nil
}

func addGroupedBars(p *plot.Plot, c chart.Config) error {
	if len(c.Series) == 0 {
		return errNoSeries
	}
	w := vg.Points(10)
	mid := float64(len(c.Series)-1) / 2
	for i, s := range c.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), w)
		if err != nil {
			return err
		}
		bars.Color = withAlpha(parseColor(s.Color), 0.8)
		bars.LineStyle.Width = 0
		bars.Offset = w * vg.Length(float64(i)-mid)
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}
	p.NominalX(c.Categories...)
	return nil
}

func addHorizontalBars(p *plot.Plot, c chart.Config) error {
	if len(c.Series) == 0 {
		return errNoSeries
	}
	for i, v := range c.Series[0].Values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(14))
		if err != nil {
			return err
		}
		bar.Horizontal = true
		bar.XMin = float64(i)
		bar.Color = parseColor(colorAt(c.Colors, i))
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.NominalY(c.Categories...)
	return nil
}

func addPie(p *plot.Plot, c chart.Config) error {
	if len(c.Series) == 0 {
		return errNoSeries
	}
	pie := &pieChart{
		Values:    c.Series[0].Values,
		TextStyle: p.Legend.TextStyle,
	}
	pie.TextStyle.XAlign = text.XCenter
	pie.TextStyle.YAlign = text.YCenter
	for i := range pie.Values {
		pie.Colors = append(pie.Colors, parseColor(colorAt(c.Colors, i)))
	}
	p.Add(pie)
	p.HideAxes()
	for i, label := range c.Categories {
		if i < len(pie.Colors) {
			p.Legend.Add(label, swatch{color: pie.Colors[i]})
		}
	}
	return nil
}

func rotateX(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(y))
	for i := range y {
		if i < len(x) {
			pts[i].X = x[i]
		} else {
			pts[i].X = float64(i)
		}
		pts[i].Y = y[i]
	}
	return pts
}

func colorAt(colors []string, i int) string {
	if len(colors) == 0 {
		return chart.Blue
	}
	return colors[i%len(colors)]
}

// parseColor reads a "#RRGGBB" string. Anything else yields black.
func parseColor(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{A: 255}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(alpha * 255))}
}
