// Package report renders per-level state counts as charts.
package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoSeries means there was nothing to draw.
var ErrNoSeries = errors.New("no series to plot")

// Series is one line of the chart: the number of states at each time index.
type Series struct {
	Label  string
	Counts []int
}

// palette cycles through line colors for valid, reachable, and rejected.
var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

// LevelPlot draws each series against the time index and saves the chart to
// path. The image format follows the file extension.
func LevelPlot(path, title string, series ...Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time index"
	p.Y.Label.Text = "States"

	drawn := 0
	for i, s := range series {
		if len(s.Counts) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s.Counts))
		for t, n := range s.Counts {
			pts[t] = plotter.XY{X: float64(t), Y: float64(n)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("building %s line: %w", s.Label, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Label, line)
		drawn++
	}
	if drawn == 0 {
		return ErrNoSeries
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
