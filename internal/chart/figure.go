// Package chart turns an indicator table into a three-panel figure: price with
// bands and moving averages, volume, and RSI. The figure is declarative and can
// be rendered as a Plotly document or rasterised to PNG.
package chart

import (
	"time"

	"StockLens/internal/model"
)

// Kind is the trace geometry.
type Kind string

const (
	KindCandlestick Kind = "candlestick"
	KindLine        Kind = "line"
	KindBar         Kind = "bar"
)

// Theme colours.
const (
	PaperColor = "#1E1E1E"
	PlotColor  = "#2D2D2D"
	FontColor  = "#FFFFFF"

	BandColor     = "rgba(173, 204, 255, 0.3)"
	BandFillColor = "rgba(173, 204, 255, 0.1)"
	MAShortColor  = "#00FF9D"
	MALongColor   = "#FF4B4B"
	UpColor       = "#4BFF4B"
	DownColor     = "#FF4B4B"
	RSIColor      = "#00FF9D"
)

// Layout constants.
const (
	FigureHeight    = 800
	VerticalSpacing = 0.1
	LineWidth       = 1.5
	VolumeOpacity   = 0.8

	RSIOverbought = 70.0
	RSIOversold   = 30.0
)

// Trace is one series drawn in a panel. Line and bar traces use Y; the
// candlestick uses the OHLC columns.
type Trace struct {
	Name string
	Kind Kind
	X    []time.Time

	Y                      []model.Point
	Open, High, Low, Close []float64

	Color     string
	Colors    []string // per-point colours for bars
	Width     float64
	Opacity   float64
	Fill      string
	FillColor string
}

// RefLine is a horizontal reference line across a panel.
type RefLine struct {
	Y     float64
	Label string
	Color string
	Dash  string
}

// Panel is one row of the figure.
type Panel struct {
	Title    string
	Height   float64 // share of the plotting area
	Traces   []Trace
	RefLines []RefLine
	YMin     *float64
	YMax     *float64
}

// Figure describes a whole chart independent of the renderer.
type Figure struct {
	Title   string
	Panels  []Panel
	Spacing float64
	Height  int
	Paper   string
	Plot    string
	Font    string
}

// Build assembles the price, volume and RSI panels for symbol. t is not modified.
func Build(t *model.IndicatorTable, symbol string) *Figure {
	if t == nil {
		t = &model.IndicatorTable{}
	}
	n := t.Len()
	x := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]model.Point, n)
	barColors := make([]string, n)
	for i, b := range t.Bars {
		x[i] = b.Time
		open[i], high[i], low[i], closes[i] = b.Open, b.High, b.Low, b.Close
		volume[i] = model.Defined(b.Volume)
		barColors[i] = DownColor
		if b.Up() {
			barColors[i] = UpColor
		}
	}

	price := Panel{
		Title:  "Price",
		Height: 0.5,
		Traces: []Trace{
			{Name: "Price", Kind: KindCandlestick, X: x, Open: open, High: high, Low: low, Close: closes,
				Color: UpColor, FillColor: DownColor},
			{Name: "Upper Band", Kind: KindLine, X: x, Y: column(t.BBUpper, n), Color: BandColor, Width: 1},
			{Name: "Lower Band", Kind: KindLine, X: x, Y: column(t.BBLower, n), Color: BandColor, Width: 1,
				Fill: "tonexty", FillColor: BandFillColor},
			{Name: "20-Day MA", Kind: KindLine, X: x, Y: column(t.SMA20, n), Color: MAShortColor, Width: LineWidth},
			{Name: "50-Day MA", Kind: KindLine, X: x, Y: column(t.SMA50, n), Color: MALongColor, Width: LineWidth},
		},
	}

	vol := Panel{
		Title:  "Volume",
		Height: 0.25,
		Traces: []Trace{
			{Name: "Volume", Kind: KindBar, X: x, Y: volume, Colors: barColors, Opacity: VolumeOpacity},
		},
	}

	lo, hi := 0.0, 100.0
	rsi := Panel{
		Title:  "RSI",
		Height: 0.25,
		Traces: []Trace{
			{Name: "RSI", Kind: KindLine, X: x, Y: column(t.RSI, n), Color: RSIColor, Width: LineWidth},
		},
		RefLines: []RefLine{
			{Y: RSIOverbought, Label: "Overbought (70)", Color: MALongColor, Dash: "dash"},
			{Y: RSIOversold, Label: "Oversold (30)", Color: UpColor, Dash: "dash"},
		},
		YMin: &lo,
		YMax: &hi,
	}

	return &Figure{
		Title:   symbol + " Stock Analysis",
		Panels:  []Panel{price, vol, rsi},
		Spacing: VerticalSpacing,
		Height:  FigureHeight,
		Paper:   PaperColor,
		Plot:    PlotColor,
		Font:    FontColor,
	}
}

// Domains returns the [bottom, top] paper fraction of each panel, top panel
// first. Spacing is taken out of the plotting area before the height shares
// are applied.
func (f *Figure) Domains() [][2]float64 {
	n := len(f.Panels)
	if n == 0 {
		return nil
	}
	total := 0.0
	for _, p := range f.Panels {
		total += p.Height
	}
	avail := 1 - f.Spacing*float64(n-1)
	out := make([][2]float64, n)
	top := 1.0
	for i, p := range f.Panels {
		h := avail * p.Height / total
		bottom := top - h
		if i == n-1 || bottom < 0 {
			bottom = 0
		}
		out[i] = [2]float64{round6(bottom), round6(top)}
		top = bottom - f.Spacing
	}
	return out
}

// column returns a column of length n even when the source is short or nil.
func column(col []model.Point, n int) []model.Point {
	out := make([]model.Point, n)
	copy(out, col)
	return out
}
