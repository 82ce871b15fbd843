package dashboard

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/calculator"
	"StockLens/internal/chart"
	"StockLens/internal/model"
	"StockLens/internal/quotes"
)

func ptr(v float64) *float64 { return &v }

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "N/A"},
		{math.NaN(), "N/A"},
		{math.Inf(1), "N/A"},
		{1500, "1.50K"},
		{2.5e6, "2.50M"},
		{3.2e9, "3.20B"},
		{42.5, "42.50"},
		{999.999, "1000.00"},
		{1e3, "1.00K"},
		{-1500, "-1500.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, NA, FormatOptional(nil))
	assert.Equal(t, "₹2.95K", FormatMoney("₹", ptr(2950)))
	assert.Equal(t, NA, FormatMoney("$", nil))
	assert.Equal(t, NA, FormatMoney("$", ptr(0)))
	assert.Equal(t, "25.00%", FormatRatioPercent(ptr(0.25)))
	assert.Equal(t, NA, FormatRatioPercent(ptr(0)))

	text, class := FormatChange(ptr(-1.234))
	assert.Equal(t, "-1.23%", text)
	assert.Equal(t, "down", class)
	text, class = FormatChange(ptr(0))
	assert.Equal(t, "0.00%", text)
	assert.Equal(t, "up", class)
	text, _ = FormatChange(nil)
	assert.Equal(t, NA, text)

	n := int64(347362)
	assert.Equal(t, "347,362", FormatCount(&n))
	assert.Equal(t, NA, FormatCount(nil))
	assert.Equal(t, NA, FormatDate(nil))
	assert.Equal(t, NA, FormatText("  "))
	assert.Equal(t, NA, FormatPoint(model.Undefined()))
	assert.Equal(t, "70.12", FormatPoint(model.Defined(70.1234)))
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "₹", CurrencySymbol("RELIANCE.NS"))
	assert.Equal(t, "₹", CurrencySymbol("500325.BO"))
	assert.Equal(t, "$", CurrencySymbol("AAPL"))
	assert.Equal(t, "$", CurrencySymbol("NSX"))
	assert.Equal(t, "TCS", DisplaySymbol("TCS.NS"))
	assert.Equal(t, "AAPL", DisplaySymbol("AAPL"))
}

func TestMetadataTablesFallBackToNA(t *testing.T) {
	empty := &model.StockMetadata{Symbol: "AAPL"}

	stats := KeyStatistics(empty)
	require.Len(t, stats, 5)
	for _, r := range stats {
		assert.Equal(t, NA, r.Value, r.Label)
	}

	metrics := FinancialMetrics("AAPL", empty)
	require.Len(t, metrics, 12)
	for _, r := range metrics {
		assert.Equal(t, NA, r.Value, r.Label)
	}

	p := CompanyProfile("AAPL", empty)
	assert.Equal(t, NA, p.Sector)
	assert.Equal(t, NA, p.Headquarters)
	assert.Nil(t, p.ESG)
	assert.Equal(t, "Closed", MarketStatus(empty))
}

func TestFinancialMetrics_Values(t *testing.T) {
	m := &model.StockMetadata{
		MarketCap:      ptr(1.99e12),
		TrailingPE:     ptr(28.1),
		TrailingEPS:    ptr(104.9),
		DividendYield:  ptr(0.0034),
		ProfitMargins:  ptr(0.078),
		ReturnOnEquity: ptr(0.09),
		DebtToEquity:   ptr(36.4),
	}
	got := map[string]string{}
	var order []string
	for _, r := range FinancialMetrics("RELIANCE.NS", m) {
		got[r.Label] = r.Value
		order = append(order, r.Label)
	}
	assert.Equal(t, []string{
		"Market Cap", "P/E Ratio", "EPS (TTM)", "Beta", "Dividend Yield", "Revenue (TTM)",
		"Profit Margin", "Operating Margin", "ROE", "ROA", "Debt to Equity", "Current Ratio",
	}, order)
	assert.Equal(t, "₹1990.00B", got["Market Cap"])
	assert.Equal(t, "28.10", got["P/E Ratio"])
	assert.Equal(t, "₹104.90", got["EPS (TTM)"])
	assert.Equal(t, "0.34%", got["Dividend Yield"])
	assert.Equal(t, "7.80%", got["Profit Margin"])
	assert.Equal(t, "9.00%", got["ROE"])
	assert.Equal(t, NA, got["ROA"])
	assert.Equal(t, "36.40", got["Debt to Equity"])
}

func TestCompanyProfile_ESG(t *testing.T) {
	m := &model.StockMetadata{
		City: "Cupertino", Country: "United States",
		SustainabilityScore: ptr(17.2), EnvironmentScore: ptr(0.6),
	}
	p := CompanyProfile("AAPL", m)
	assert.Equal(t, "Cupertino, United States", p.Headquarters)
	require.NotNil(t, p.ESG)
	assert.Equal(t, "17.20", p.ESG.Total)
	assert.Equal(t, "0.60", p.ESG.Environment)
	assert.Equal(t, NA, p.ESG.Social)
}

func TestNewHomeView(t *testing.T) {
	now := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	chg := -0.5
	v := NewHomeView(HomeInput{
		Title:          "Indian Stock Analysis Dashboard",
		Tickers:        []string{"RELIANCE.NS", "TCS.NS"},
		SelectedSymbol: "TCS.NS",
		SelectedPeriod: model.Period6mo,
		Quotes:         []quotes.Quote{{Symbol: "TCS.NS", Price: "3,800", ChangeFmt: "-0.50%", ChangeRaw: &chg}, {Symbol: "X", Err: "boom"}},
		Now:            now,
	})

	require.Len(t, v.Tickers, 2)
	assert.Equal(t, "RELIANCE", v.Tickers[0].Label)
	assert.True(t, v.Tickers[1].Selected)
	require.Len(t, v.Periods, 9)
	assert.Equal(t, "Last 24 Hours", v.Periods[0].Label)
	for _, p := range v.Periods {
		assert.Equal(t, p.Value == "6mo", p.Selected)
	}
	assert.Equal(t, "2023-06-14", v.Start)
	assert.Equal(t, "2024-06-14", v.End)
	assert.Equal(t, "down", v.Quotes[0].Class)
	assert.Equal(t, "", v.Quotes[1].Class)
	assert.NotEmpty(t, v.Features)
}

func TestNewAnalysisView(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 30)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c - 1, High: c + 1, Low: c - 2, Close: c, Volume: 1e6}
	}
	table := calculator.Calculate(bars)
	now := start.AddDate(0, 1, 0)
	a := &model.Analysis{
		Symbol:   "INFY.NS",
		Range:    model.Range{Period: model.Period1mo},
		Table:    table,
		Metadata: &model.StockMetadata{Symbol: "INFY.NS", LongName: "Infosys Limited", CurrentPrice: ptr(1500), ChangePercent: ptr(1.25), RegularMarketOpen: ptr(1490)},
		News: []model.NewsItem{
			{Title: "Infosys wins deal", Published: now.Add(-2 * time.Hour), Link: "https://n/1"},
			{Title: "Undated"},
		},
		FetchedAt: now,
	}

	v, err := NewAnalysisView(a, chart.Build(table, a.Symbol), now)
	require.NoError(t, err)

	assert.Equal(t, "INFY", v.DisplaySymbol)
	assert.Equal(t, "Infosys Limited", v.Name)
	assert.Equal(t, "Last Month", v.RangeLabel)
	assert.Equal(t, "₹1.50K", v.Header.Price)
	assert.Equal(t, "1.25%", v.Header.Change)
	assert.Equal(t, "up", v.Header.ChangeClass)
	assert.Equal(t, "Open", v.MarketStatus)
	assert.Len(t, v.KeyStats, 5)
	assert.Len(t, v.Metrics, 12)
	require.Len(t, v.News, 2)
	assert.Equal(t, "2 hours ago", v.News[0].Age)
	assert.Equal(t, NA, v.News[1].Date)
	require.Len(t, v.Indicators, IndicatorRowCount)
	assert.Equal(t, "2024-01-30", v.Indicators[9].Date)
	assert.Equal(t, NA, v.Indicators[9].SMA50)
	assert.True(t, json.Valid([]byte(v.ChartJSON)))
}

func TestIndicatorRows_Short(t *testing.T) {
	assert.Empty(t, IndicatorRows(nil, 5))
	table := calculator.Calculate([]model.OHLCV{{Close: 1}, {Close: 2}})
	assert.Len(t, IndicatorRows(table, 5), 2)
}
