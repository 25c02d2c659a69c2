package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// renderDensityPlot draws log10 density against blood-stage day as a PNG.
// Days with zero density are left out.
func renderDensityPlot(w io.Writer, title string, dens []float64) error {
	var xs, ys []float64
	for day, d := range dens {
		if d > 0 {
			xs = append(xs, float64(day))
			ys = append(ys, math.Log10(d))
		}
	}
	if len(xs) < 2 {
		return fmt.Errorf("need at least 2 positive days to plot, got %d", len(xs))
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 400,
		XAxis:  chart.XAxis{Name: "blood-stage day"},
		YAxis:  chart.YAxis{Name: "log10 density"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "density",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 1.5,
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
