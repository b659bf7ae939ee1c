// Package charts renders the dashboard line charts as SVG with go-chart.
// Missing values are left out of a series, so lines connect the measured days.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/analysis"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// ErrNoData is returned when no series has a single point to draw.
var ErrNoData = errors.New("chart has no data")

const (
	width  = 900
	height = 360

	tickLayout = "02.01.06"
)

// Catalog is the metadata the charts need for labels and colours.
type Catalog interface {
	Info(p types.Parameter) types.ParameterInfo
}

// MainOptions is the request-scoped selection of the main chart.
type MainOptions struct {
	Selected   []types.Parameter
	ShowTrends bool
}

// nutrients are drawn together on the nutrient chart.
var nutrients = []types.Parameter{types.Ammonium, types.Nitrat, types.Nitrit, types.Phosphat}

var (
	temperatureColor = drawing.Color{R: 0x88, G: 0x84, B: 0xd8, A: 0xff}
	prevDayColor     = drawing.Color{R: 0x82, G: 0xca, B: 0x9d, A: 0xff}
)

// RenderMain draws the selected parameters over time and, with ShowTrends,
// their trailing averages as dashed lines in the same colour.
func RenderMain(w io.Writer, readings []analysis.TrendReading, cat Catalog, opts MainOptions) error {
	c, err := mainChart(readings, cat, opts)
	if err != nil {
		return err
	}
	return render(w, c)
}

// RenderTemperature draws the day's temperature against the previous day's.
func RenderTemperature(w io.Writer, readings []types.Reading) error {
	c, err := temperatureChart(readings)
	if err != nil {
		return err
	}
	return render(w, c)
}

// RenderNutrients draws ammonium, nitrate, nitrite and phosphate.
func RenderNutrients(w io.Writer, readings []types.Reading, cat Catalog) error {
	c, err := nutrientChart(readings, cat)
	if err != nil {
		return err
	}
	return render(w, c)
}

// SeriesColor is the main-chart colour of the i-th selected parameter.
func SeriesColor(i int) drawing.Color {
	return hsl(float64(i*40%360), 0.7, 0.5)
}

// SeriesHex is SeriesColor as a CSS hex string.
func SeriesHex(i int) string {
	c := SeriesColor(i)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func mainChart(readings []analysis.TrendReading, cat Catalog, opts MainOptions) (chart.Chart, error) {
	b := newBuilder()
	for i, p := range opts.Selected {
		label := cat.Info(p).Label
		color := SeriesColor(i)
		b.add(label, lineStyle(color, false), len(readings), func(j int) (time.Time, types.Value) {
			return readings[j].Date, readings[j].Get(p)
		})
		if opts.ShowTrends {
			b.add(label+" Trend", lineStyle(color, true), len(readings), func(j int) (time.Time, types.Value) {
				return readings[j].Date, readings[j].TrendValue(p)
			})
		}
	}
	return b.chart("")
}

func temperatureChart(readings []types.Reading) (chart.Chart, error) {
	b := newBuilder()
	b.add("Temperatur", lineStyle(temperatureColor, false), len(readings), func(j int) (time.Time, types.Value) {
		return readings[j].Date, types.Some(readings[j].Temperature)
	})
	b.add("Vortag", lineStyle(prevDayColor, false), len(readings), func(j int) (time.Time, types.Value) {
		return readings[j].Date, types.Some(readings[j].PrevDayTemp)
	})
	return b.chart("°C")
}

func nutrientChart(readings []types.Reading, cat Catalog) (chart.Chart, error) {
	b := newBuilder()
	for _, p := range nutrients {
		info := cat.Info(p)
		color, err := parseHex(info.Color)
		if err != nil {
			return chart.Chart{}, fmt.Errorf("%s colour: %w", p.Key(), err)
		}
		b.add(info.Label, lineStyle(color, false), len(readings), func(j int) (time.Time, types.Value) {
			return readings[j].Date, readings[j].Get(p)
		})
	}
	return b.chart("mg/L")
}

// builder collects series and tracks the data bounds for explicit axis ranges.
type builder struct {
	series     []chart.Series
	dates      []time.Time
	minY, maxY float64
}

func newBuilder() *builder {
	return &builder{minY: math.Inf(1), maxY: math.Inf(-1)}
}

func (b *builder) add(name string, style chart.Style, n int, at func(int) (time.Time, types.Value)) {
	var xs []time.Time
	var ys []float64
	for j := 0; j < n; j++ {
		t, v := at(j)
		if j >= len(b.dates) {
			b.dates = append(b.dates, t)
		}
		if !v.Valid {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, v.Float)
		b.minY = math.Min(b.minY, v.Float)
		b.maxY = math.Max(b.maxY, v.Float)
	}
	if len(xs) == 0 {
		return
	}
	if len(xs) == 1 {
		// go-chart needs two points to draw a series.
		xs = append(xs, xs[0].Add(time.Hour))
		ys = append(ys, ys[0])
		style.DotWidth = 4
		style.DotColor = style.StrokeColor
	}
	b.series = append(b.series, chart.TimeSeries{Name: name, Style: style, XValues: xs, YValues: ys})
}

func (b *builder) chart(unit string) (chart.Chart, error) {
	if len(b.series) == 0 {
		return chart.Chart{}, ErrNoData
	}
	lo, hi := paddedRange(b.minY, b.maxY)
	c := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 56},
		},
		XAxis:  dateAxis(b.dates),
		YAxis:  chart.YAxis{Name: unit, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: b.series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c, nil
}

func render(w io.Writer, c chart.Chart) error {
	if err := c.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// dateAxis puts one tick on every reading date.
func dateAxis(dates []time.Time) chart.XAxis {
	if len(dates) == 0 {
		return chart.XAxis{}
	}
	first, last := dates[0], dates[len(dates)-1]
	if !last.After(first) {
		last = first.Add(24 * time.Hour)
	}
	ticks := make([]chart.Tick, 0, len(dates))
	for _, d := range dates {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(d), Label: d.Format(tickLayout)})
	}
	return chart.XAxis{
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: chart.TimeToFloat64(first), Max: chart.TimeToFloat64(last)},
	}
}

// paddedRange widens [lo, hi] by 10% and never returns an empty range.
func paddedRange(lo, hi float64) (float64, float64) {
	if hi <= lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.1
	lo -= pad
	if lo < 0 && lo+pad >= 0 {
		lo = 0
	}
	return lo, hi + pad
}

func lineStyle(color drawing.Color, dashed bool) chart.Style {
	s := chart.Style{StrokeColor: color, StrokeWidth: 2}
	if dashed {
		s.StrokeDashArray = []float64{5, 5}
	}
	return s
}

func parseHex(s string) (drawing.Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return drawing.Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return drawing.Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return drawing.Color{R: r, G: g, B: b, A: 0xff}, nil
}

// hsl converts hue in degrees and saturation/lightness in [0,1].
func hsl(h, s, l float64) drawing.Color {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return drawing.Color{R: to8(r), G: to8(g), B: to8(b), A: 0xff}
}
