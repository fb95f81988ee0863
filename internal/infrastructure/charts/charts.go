package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"

	"TenderMonitor/internal/report"
)

const (
	width  = 1024
	height = 512
)

// PNGRenderer draws report charts as PNG files.
type PNGRenderer struct{}

var _ report.ChartRenderer = PNGRenderer{}

// Bar renders one bar per bucket.
func (PNGRenderer) Bar(path, title string, counts []report.Count) error {
	if len(counts) == 0 {
		return fmt.Errorf("no data for %s", title)
	}

	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.Value{Label: c.Label, Value: float64(c.Value)})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(counts)},
		},
		Bars: bars,
	}
	return writePNG(path, graph.Render)
}

// Line renders buckets as a single series in bucket order.
func (PNGRenderer) Line(path, title string, counts []report.Count) error {
	if len(counts) == 0 {
		return fmt.Errorf("no data for %s", title)
	}

	xs := make([]float64, len(counts))
	ys := make([]float64, len(counts))
	ticks := make([]chart.Tick, len(counts))
	for i, c := range counts {
		xs[i] = float64(i)
		ys[i] = float64(c.Value)
		ticks[i] = chart.Tick{Value: float64(i), Label: c.Label}
	}

	xMax := float64(len(counts) - 1)
	if xMax < 1 {
		xMax = 1
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(counts)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return writePNG(path, graph.Render)
}

func axisMax(counts []report.Count) float64 {
	top := 0
	for _, c := range counts {
		if c.Value > top {
			top = c.Value
		}
	}
	return float64(top + 1)
}

func writePNG(path string, render func(chart.RendererProvider, io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := render(chart.PNG, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
