package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws wedges counter-clockwise from twelve o'clock, each labelled
// with its percentage of the total.
type pieChart struct {
	Values    []float64
	Colors    []color.Color
	TextStyle text.Style
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := floats.Sum(pc.Values)
	if total <= 0 {
		return
	}
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2 * 0.9

	start := math.Pi / 2
	for i, v := range pc.Values {
		sweep := 2 * math.Pi * v / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()
		c.SetColor(pc.Colors[i%len(pc.Colors)])
		c.Fill(wedge)

		mid := start + sweep/2
		at := vg.Point{
			X: center.X + radius*0.6*vg.Length(math.Cos(mid)),
			Y: center.Y + radius*0.6*vg.Length(math.Sin(mid)),
		}
		c.FillText(pc.TextStyle, at, fmt.Sprintf("%.1f%%", 100*v/total))
		start += sweep
	}
}

// DataRange implements plot.DataRanger so the pie stays centred.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}

// swatch is a legend thumbnail filled with a single color.
type swatch struct {
	color color.Color
}

// Thumbnail implements plot.Thumbnailer.
func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}
