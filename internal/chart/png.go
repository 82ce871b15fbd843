package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default raster size.
const (
	DefaultPNGWidth  = 1200
	DefaultPNGHeight = 800
)

// ErrTooFewBars is returned when a figure has fewer than two sessions to plot.
var ErrTooFewBars = errors.New("need at least 2 bars to render")

// RenderPNG rasterises every panel with go-chart and stacks them top to bottom,
// each taking its height share of the image. Non-positive sizes use defaults.
func RenderPNG(f *Figure, w io.Writer, width, height int) error {
	if f == nil || len(f.Panels) == 0 {
		return errors.New("empty figure")
	}
	if width <= 0 {
		width = DefaultPNGWidth
	}
	if height <= 0 {
		height = DefaultPNGHeight
	}
	if n := barCount(f); n < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewBars, n)
	}

	total := 0.0
	for _, p := range f.Panels {
		total += p.Height
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(parseColor(f.Paper)), image.Point{}, draw.Src)

	top := 0
	for i, p := range f.Panels {
		h := int(float64(height) * p.Height / total)
		if i == len(f.Panels)-1 {
			h = height - top
		}
		img, err := renderPanel(f, p, width, h)
		if err != nil {
			return fmt.Errorf("render %s panel: %w", p.Title, err)
		}
		rect := image.Rect(0, top, width, top+h)
		draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Over)
		top += h
	}

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// panelSeries converts a panel's traces to go-chart series. Band fills come
// first so lines and candles draw over them.
func panelSeries(p Panel) []gochart.Series {
	var first, last time.Time
	var fills, series []gochart.Series
	for i, tr := range p.Traces {
		if len(tr.X) > 0 {
			first, last = tr.X[0], tr.X[len(tr.X)-1]
		}
		switch tr.Kind {
		case KindCandlestick:
			series = append(series, candleSeries{trace: tr, up: parseColor(tr.Color), down: parseColor(tr.FillColor)})
		case KindBar:
			series = append(series, volumeSeries{trace: tr})
		default:
			if tr.Fill == "tonexty" && i > 0 {
				if bf, ok := bandFill(p.Traces[i-1], tr); ok {
					fills = append(fills, bf)
				}
			}
			if ts, ok := lineSeries(tr); ok {
				series = append(series, ts)
			}
		}
	}
	for _, ref := range p.RefLines {
		series = append(series, gochart.TimeSeries{
			Name: ref.Label,
			Style: gochart.Style{
				StrokeColor:     parseColor(ref.Color),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: []time.Time{first, last},
			YValues: []float64{ref.Y, ref.Y},
		})
	}
	return append(fills, series...)
}

func renderPanel(f *Figure, p Panel, width, height int) (image.Image, error) {
	font := parseColor(f.Font)
	axisStyle := gochart.Style{FontColor: font, StrokeColor: font}
	graph := gochart.Chart{
		Title:      p.Title,
		TitleStyle: gochart.Style{FontColor: font},
		Width:      width,
		Height:     height,
		Background: gochart.Style{
			FillColor: parseColor(f.Paper),
			Padding:   gochart.Box{Top: 30, Left: 10, Right: 20, Bottom: 10},
		},
		Canvas: gochart.Style{FillColor: parseColor(f.Plot)},
		XAxis: gochart.XAxis{
			Style: axisStyle,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return gochart.TimeFromFloat64(t).Format("Jan 02 06")
				}
				return ""
			},
		},
		YAxis: gochart.YAxis{
			Style: axisStyle,
			ValueFormatter: func(v interface{}) string {
				if val, ok := v.(float64); ok {
					return humanize.SIWithDigits(val, 1, "")
				}
				return ""
			},
		},
		Series: panelSeries(p),
	}
	if p.YMin != nil && p.YMax != nil {
		graph.YAxis.Range = &gochart.ContinuousRange{Min: *p.YMin, Max: *p.YMax}
	}
	graph.Elements = []gochart.Renderable{gochart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// lineSeries keeps only defined points; go-chart has no gap marker.
func lineSeries(tr Trace) (gochart.TimeSeries, bool) {
	var xs []time.Time
	var ys []float64
	for i, p := range tr.Y {
		if p.Valid && i < len(tr.X) {
			xs = append(xs, tr.X[i])
			ys = append(ys, p.Value)
		}
	}
	if len(xs) < 2 {
		return gochart.TimeSeries{}, false
	}
	return gochart.TimeSeries{
		Name:    tr.Name,
		Style:   gochart.Style{StrokeColor: parseColor(tr.Color), StrokeWidth: tr.Width},
		XValues: xs,
		YValues: ys,
	}, true
}

// bandFillSeries shades the area between two line traces, like Plotly's
// "tonexty" fill.
type bandFillSeries struct {
	name         string
	xs           []float64
	upper, lower []float64
	color        drawing.Color
}

// bandFill pairs upper and lower at the sessions where both are defined.
func bandFill(upper, lower Trace) (bandFillSeries, bool) {
	s := bandFillSeries{name: lower.Name + " fill", color: parseColor(lower.FillColor)}
	for i := range lower.X {
		if i >= len(upper.Y) || i >= len(lower.Y) || !upper.Y[i].Valid || !lower.Y[i].Valid {
			continue
		}
		s.xs = append(s.xs, gochart.TimeToFloat64(lower.X[i]))
		s.upper = append(s.upper, upper.Y[i].Value)
		s.lower = append(s.lower, lower.Y[i].Value)
	}
	return s, len(s.xs) >= 2
}

func (s bandFillSeries) GetName() string { return s.name }
func (s bandFillSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s bandFillSeries) Len() int { return len(s.xs) }
func (s bandFillSeries) Validate() error { return nil }

func (s bandFillSeries) GetStyle() gochart.Style {
	return gochart.Style{FillColor: s.color, StrokeColor: drawing.ColorTransparent, StrokeWidth: 1}
}

func (s bandFillSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	return s.xs[i], s.upper[i], s.lower[i]
}

func (s bandFillSeries) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	gochart.Draw.BoundedSeries(r, box, xr, yr, s.GetStyle(), s)
}

// candleSeries draws OHLC bodies and wicks.
type candleSeries struct {
	trace    Trace
	up, down drawing.Color
}

func (s candleSeries) GetName() string { return s.trace.Name }
func (s candleSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s candleSeries) GetStyle() gochart.Style { return gochart.Style{StrokeColor: s.up, FillColor: s.up} }
func (s candleSeries) Len() int { return len(s.trace.X) }

func (s candleSeries) Validate() error {
	n := len(s.trace.X)
	if len(s.trace.Open) != n || len(s.trace.High) != n || len(s.trace.Low) != n || len(s.trace.Close) != n {
		return errors.New("candlestick columns differ in length")
	}
	return nil
}

func (s candleSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	return gochart.TimeToFloat64(s.trace.X[i]), s.trace.High[i], s.trace.Low[i]
}

func (s candleSeries) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	half := slotWidth(box, s.Len()) / 2
	for i, t := range s.trace.X {
		x := box.Left + xr.Translate(gochart.TimeToFloat64(t))
		o := box.Bottom - yr.Translate(s.trace.Open[i])
		c := box.Bottom - yr.Translate(s.trace.Close[i])
		hi := box.Bottom - yr.Translate(s.trace.High[i])
		lo := box.Bottom - yr.Translate(s.trace.Low[i])

		col := s.down
		if s.trace.Close[i] >= s.trace.Open[i] {
			col = s.up
		}
		r.SetStrokeColor(col)
		r.SetFillColor(col)
		r.SetStrokeWidth(1)

		r.MoveTo(x, hi)
		r.LineTo(x, lo)
		r.Stroke()

		if o == c {
			c = o + 1
		}
		fillRect(r, x-half, o, x+half, c)
	}
}

// volumeSeries draws one bar per session from zero.
type volumeSeries struct {
	trace Trace
}

func (s volumeSeries) GetName() string { return s.trace.Name }
func (s volumeSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s volumeSeries) Len() int { return len(s.trace.X) }
func (s volumeSeries) Validate() error { return nil }

func (s volumeSeries) GetStyle() gochart.Style {
	return gochart.Style{StrokeColor: parseColor(UpColor), FillColor: parseColor(UpColor)}
}

func (s volumeSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	v := 0.0
	if i < len(s.trace.Y) && s.trace.Y[i].Valid {
		v = s.trace.Y[i].Value
	}
	return gochart.TimeToFloat64(s.trace.X[i]), v, 0
}

func (s volumeSeries) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	half := slotWidth(box, s.Len()) / 2
	base := box.Bottom - yr.Translate(0)
	for i, t := range s.trace.X {
		_, v, _ := s.GetBoundedValues(i)
		col := parseColor(UpColor)
		if i < len(s.trace.Colors) {
			col = parseColor(s.trace.Colors[i])
		}
		if s.trace.Opacity > 0 {
			col.A = uint8(s.trace.Opacity * 255)
		}
		r.SetStrokeColor(col)
		r.SetFillColor(col)
		r.SetStrokeWidth(1)
		x := box.Left + xr.Translate(gochart.TimeToFloat64(t))
		fillRect(r, x-half, box.Bottom-yr.Translate(v), x+half, base)
	}
}

func slotWidth(box gochart.Box, n int) int {
	if n <= 0 {
		return 1
	}
	w := int(float64(box.Width()) / float64(n) * 0.6)
	if w < 1 {
		w = 1
	}
	return w
}

func fillRect(r gochart.Renderer, x0, y0, x1, y1 int) {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.FillStroke()
}

func barCount(f *Figure) int {
	for _, p := range f.Panels {
		for _, tr := range p.Traces {
			return len(tr.X)
		}
	}
	return 0
}

// parseColor accepts "#RRGGBB" and "rgba(r, g, b, a)".
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rgba(") {
		var r, g, b int
		var a float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err == nil {
			return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a * 255)}
		}
		return drawing.ColorWhite
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
