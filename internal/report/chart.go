package report

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// RenderTrendChart draws a year/value line chart with point markers and
// returns it as an in-memory PNG for embedding in PDFs.
func RenderTrendChart(years []int, values []float64, title, unit string) ([]byte, error) {
	if len(years) == 0 || len(years) != len(values) {
		return nil, fmt.Errorf("chart needs matching year and value series")
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.Text = unit
	p.X.Tick.Marker = yearTicks(years)

	points := make(plotter.XYs, len(years))
	for i := range years {
		points[i].X = float64(years[i])
		points[i].Y = values[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build line: %w", err)
	}
	line.Width = vg.Points(1.5)

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build markers: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2.5)

	p.Add(plotter.NewGrid(), line, scatter)

	wt, err := p.WriterTo(6*vg.Inch, 2.4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// yearTicks labels every year as an integer instead of the default
// fractional ticks.
type yearTicks []int

func (t yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for _, y := range t {
		v := float64(y)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%d", y)})
	}
	return ticks
}
