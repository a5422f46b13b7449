package render

import (
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// WriteMeanChart plots the spatial mean of both compounds against simulated
// time and writes the chart as a PNG. One chart is produced per mode after
// a successful simulation.
func WriteMeanChart(path, title string, times, meanU, meanV []float64) error {
	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 300,
		XAxis: chart.XAxis{
			Name: "t",
			Style: chart.Style{
				FontSize: 10.0,
			},
		},
		YAxis: chart.YAxis{
			Name: "mean concentration",
			Style: chart.Style{
				FontSize: 10.0,
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "mean u",
				XValues: times,
				YValues: meanU,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "mean v",
				XValues: times,
				YValues: meanV,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 214, G: 69, B: 65, A: 255},
					StrokeWidth: 2.0,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.Render(chart.PNG, f)
}
