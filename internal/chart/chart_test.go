package chart

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

func sampleBars(n int) []model.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + float64(i%7) - float64(i%3)
		o := c - 1
		if i%2 == 0 {
			o = c + 1
		}
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: o, High: c + 2, Low: c - 2, Close: c, Volume: 1e6 + float64(i)*1e4}
	}
	return bars
}

func TestBuild_AlwaysThreePanels(t *testing.T) {
	for _, n := range []int{0, 1, 5, 60} {
		fig := Build(calculator.Calculate(sampleBars(n)), "AAPL")
		require.Len(t, fig.Panels, 3, "n=%d", n)
		assert.Equal(t, []float64{0.5, 0.25, 0.25}, []float64{fig.Panels[0].Height, fig.Panels[1].Height, fig.Panels[2].Height})
		for _, p := range fig.Panels {
			for _, tr := range p.Traces {
				assert.Len(t, tr.X, n)
			}
		}
	}
}

func TestBuild_TraceNamesAndColours(t *testing.T) {
	fig := Build(calculator.Calculate(sampleBars(30)), "TCS.NS")

	var names []string
	for _, tr := range fig.Panels[0].Traces {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"Price", "Upper Band", "Lower Band", "20-Day MA", "50-Day MA"}, names)
	assert.Equal(t, "tonexty", fig.Panels[0].Traces[2].Fill)
	assert.Equal(t, BandFillColor, fig.Panels[0].Traces[2].FillColor)

	vol := fig.Panels[1].Traces[0]
	assert.Equal(t, KindBar, vol.Kind)
	assert.Equal(t, DownColor, vol.Colors[0]) // open above close
	assert.Equal(t, UpColor, vol.Colors[1])
	assert.Equal(t, VolumeOpacity, vol.Opacity)

	rsi := fig.Panels[2]
	require.Len(t, rsi.RefLines, 2)
	assert.Equal(t, "Overbought (70)", rsi.RefLines[0].Label)
	assert.Equal(t, 30.0, rsi.RefLines[1].Y)
	assert.Equal(t, PaperColor, fig.Paper)
	assert.Equal(t, PlotColor, fig.Plot)
	assert.Equal(t, FigureHeight, fig.Height)
}

func TestBuild_DoesNotMutateTable(t *testing.T) {
	table := calculator.Calculate(sampleBars(25))
	before := calculator.Recalculate(table)
	fig := Build(table, "X")
	fig.Panels[0].Traces[1].Y[24] = model.Defined(-1)
	assert.Equal(t, before, table)
}

func TestDomains(t *testing.T) {
	fig := Build(nil, "X")
	doms := fig.Domains()
	require.Len(t, doms, 3)
	want := [][2]float64{{0.6, 1}, {0.3, 0.5}, {0, 0.2}}
	for i := range want {
		assert.InDelta(t, want[i][0], doms[i][0], 1e-9)
		assert.InDelta(t, want[i][1], doms[i][1], 1e-9)
	}
}

func TestPlotlyJSON(t *testing.T) {
	fig := Build(calculator.Calculate(sampleBars(10)), "AAPL")
	data, err := fig.PlotlyJSON()
	require.NoError(t, err)

	var doc struct {
		Data []struct {
			Name  string     `json:"name"`
			Type  string     `json:"type"`
			YAxis string     `json:"yaxis"`
			Y     []*float64 `json:"y"`
		} `json:"data"`
		Layout map[string]json.RawMessage `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Data, 7)
	assert.Equal(t, "candlestick", doc.Data[0].Type)
	assert.Equal(t, "y2", doc.Data[5].YAxis)
	assert.Equal(t, "y3", doc.Data[6].YAxis)
	// Ten rows: the 20-day band is undefined everywhere.
	for _, v := range doc.Data[1].Y {
		assert.Nil(t, v)
	}
	assert.Contains(t, doc.Layout, "yaxis3")
	assert.Contains(t, string(doc.Layout["shapes"]), "Overbought")
	assert.JSONEq(t, `"#1E1E1E"`, string(doc.Layout["paper_bgcolor"]))
	assert.JSONEq(t, `{"yanchor":"top","y":0.99,"xanchor":"left","x":0.01,"bgcolor":"rgba(0,0,0,0.5)"}`, string(doc.Layout["legend"]))
	assert.JSONEq(t, `{"l":50,"r":50,"t":30,"b":50}`, string(doc.Layout["margin"]))
	assert.NotContains(t, doc.Layout, "title")

	for i, want := range []string{"Price", "Volume", "RSI"} {
		var axis struct {
			Title     struct{ Text string } `json:"title"`
			GridColor string                `json:"gridcolor"`
			ZeroLine  *bool                 `json:"zeroline"`
		}
		require.NoError(t, json.Unmarshal(doc.Layout[axisKey(i)], &axis))
		assert.Equal(t, want, axis.Title.Text)
		assert.Equal(t, "rgba(128,128,128,0.2)", axis.GridColor)
		require.NotNil(t, axis.ZeroLine)
		assert.False(t, *axis.ZeroLine)
	}
}

func TestRenderPNG(t *testing.T) {
	fig := Build(calculator.Calculate(sampleBars(60)), "AAPL")
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(fig, &buf, 600, 400))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestPanelSeries_BandFill(t *testing.T) {
	fig := Build(calculator.Calculate(sampleBars(60)), "AAPL")
	series := panelSeries(fig.Panels[0])
	require.NotEmpty(t, series)

	fill, ok := series[0].(bandFillSeries)
	require.True(t, ok, "band fill must be drawn first")
	assert.Equal(t, 60-calculator.BollingerPeriod+1, fill.Len())
	assert.Equal(t, parseColor(BandFillColor), fill.GetStyle().FillColor)

	for i := 0; i < fill.Len(); i++ {
		_, upper, lower := fill.GetBoundedValues(i)
		assert.GreaterOrEqual(t, upper, lower)
	}

	for _, s := range panelSeries(fig.Panels[1]) {
		_, isFill := s.(bandFillSeries)
		assert.False(t, isFill, "volume panel has no band")
	}
}

func TestBandFill_NeedsTwoPoints(t *testing.T) {
	fig := Build(calculator.Calculate(sampleBars(calculator.BollingerPeriod)), "AAPL")
	for _, s := range panelSeries(fig.Panels[0]) {
		_, isFill := s.(bandFillSeries)
		assert.False(t, isFill)
	}
}

func TestRenderPNG_TooFewBars(t *testing.T) {
	fig := Build(calculator.Calculate(sampleBars(1)), "AAPL")
	err := RenderPNG(fig, &bytes.Buffer{}, 0, 0)
	assert.ErrorIs(t, err, ErrTooFewBars)
}

func TestParseColor(t *testing.T) {
	c := parseColor(BandColor)
	assert.Equal(t, uint8(173), c.R)
	assert.Equal(t, uint8(255), c.B)
	assert.Equal(t, uint8(76), c.A)
	assert.Equal(t, uint8(0x1E), parseColor(PaperColor).R)
}
