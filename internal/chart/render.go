// Package chart draws a telemetry.ChartSeries as a line chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"plant_monitor/internal/telemetry"
)

// Format selects the output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps a query value onto a Format; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatPNG):
		return FormatPNG, nil
	case string(FormatSVG):
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ErrNothingToPlot is returned when neither series holds a single reading.
var ErrNothingToPlot = errors.New("chart: nothing to plot")

const (
	DefaultWidth  = 900
	DefaultHeight = 400

	// maxTicks bounds the number of X labels so dd/MM strings do not overlap.
	maxTicks = 12
)

var (
	temperatureColor = drawing.Color{R: 255, G: 99, B: 132, A: 255}
	humidityColor    = drawing.Color{R: 54, G: 162, B: 235, A: 255}
)

// Renderer holds presentation settings.
type Renderer struct {
	Width  int
	Height int
	Title  string
}

// Render writes series to w in format f. Null readings are skipped, so the
// line joins the neighbouring points.
func (r Renderer) Render(w io.Writer, series telemetry.ChartSeries, f Format) error {
	temp := buildLine("Temperature", series.Temperature, temperatureColor)
	hum := buildLine("Humidity", series.Humidity, humidityColor)

	var lines []gochart.Series
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, l := range []*line{temp, hum} {
		if l == nil {
			continue
		}
		lines = append(lines, l.series)
		minY = math.Min(minY, l.min)
		maxY = math.Max(maxY, l.max)
	}
	if len(lines) == 0 {
		return ErrNothingToPlot
	}
	if maxY <= minY {
		minY, maxY = minY-1, maxY+1
	}

	width, height := r.Width, r.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	ch := gochart.Chart{
		Title:      r.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 28}},
		XAxis:      xAxis(series.Labels),
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: minY, Max: maxY}},
		Series:     lines,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	provider := gochart.PNG
	if f == FormatSVG {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render %s chart: %w", f, err)
	}
	return nil
}

type line struct {
	series   gochart.ContinuousSeries
	min, max float64
}

// buildLine returns nil when values has no readings. Point i sits at x=i+1 so
// it lines up with the label ticks.
func buildLine(name string, values []*float64, col drawing.Color) *line {
	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	l := &line{min: math.MaxFloat64, max: -math.MaxFloat64}
	for i, v := range values {
		if v == nil {
			continue
		}
		xs = append(xs, float64(i+1))
		ys = append(ys, *v)
		l.min = math.Min(l.min, *v)
		l.max = math.Max(l.max, *v)
	}
	if len(xs) == 0 {
		return nil
	}
	// go-chart needs two points to draw a line
	if len(xs) == 1 {
		xs = append(xs, xs[0]+0.01)
		ys = append(ys, ys[0])
	}
	l.series = gochart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
			FillColor:   col.WithAlpha(51),
			DotColor:    col,
			DotWidth:    3,
		},
	}
	return l
}

func xAxis(labels []string) gochart.XAxis {
	n := len(labels)
	step := 1
	if n > maxTicks {
		step = (n + maxTicks - 1) / maxTicks
	}
	ticks := make([]gochart.Tick, 0, n/step+2)
	for i := 0; i < n; i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i + 1), Label: labels[i]})
	}
	maxR := float64(n) + 0.5
	if n <= 1 {
		maxR = 2.0
		ticks = append(ticks, gochart.Tick{Value: 2, Label: ""})
	}
	return gochart.XAxis{
		Ticks: ticks,
		Range: &gochart.ContinuousRange{Min: 0.5, Max: maxR},
	}
}
