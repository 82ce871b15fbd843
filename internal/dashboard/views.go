package dashboard

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"StockLens/internal/chart"
	"StockLens/internal/model"
	"StockLens/internal/quotes"
)

// Row is one labelled value in a statistics table.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Header holds the headline metrics at the top of the analysis page.
type Header struct {
	Price       string `json:"price"`
	Change      string `json:"change"`
	ChangeClass string `json:"change_class"`
	High52      string `json:"high_52w"`
	Low52       string `json:"low_52w"`
	MarketCap   string `json:"market_cap"`
	Volume      string `json:"volume"`
}

// ESG holds sustainability scores.
type ESG struct {
	Total       string `json:"total"`
	Environment string `json:"environment"`
	Social      string `json:"social"`
	Governance  string `json:"governance"`
}

// Profile is the company profile tab.
type Profile struct {
	Summary        string `json:"summary"`
	Sector         string `json:"sector"`
	Industry       string `json:"industry"`
	Website        string `json:"website"`
	Employees      string `json:"employees"`
	Headquarters   string `json:"headquarters"`
	Exchange       string `json:"exchange"`
	Currency       string `json:"currency"`
	MarketCap      string `json:"market_cap"`
	EarningsDate   string `json:"earnings_date"`
	ExDividendDate string `json:"ex_dividend_date"`
	FiscalYearEnd  string `json:"fiscal_year_end"`
	ESG            *ESG   `json:"esg,omitempty"`
}

// NewsRow is one headline ready for display.
type NewsRow struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Age       string `json:"age"`
	Link      string `json:"link"`
	Publisher string `json:"publisher,omitempty"`
}

// IndicatorRow is one session with its derived values formatted.
type IndicatorRow struct {
	Date       string `json:"date"`
	Close      string `json:"close"`
	SMA20      string `json:"sma_20"`
	SMA50      string `json:"sma_50"`
	RSI        string `json:"rsi"`
	MACD       string `json:"macd"`
	SignalLine string `json:"signal_line"`
	BBUpper    string `json:"bb_upper"`
	BBLower    string `json:"bb_lower"`
}

// Option is a select-box entry.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// QuoteRow is one entry of the home-page quote board.
type QuoteRow struct {
	Symbol string
	Name   string
	Price  string
	Change string
	Class  string
}

// HomeView is everything the home page renders.
type HomeView struct {
	Title     string
	Tickers   []Option
	Periods   []Option
	Custom    bool
	Start     string
	End       string
	Quotes    []QuoteRow
	Features  []string
	Error     string
	UpdatedAt string
}

// AnalysisView is everything the analysis page renders.
type AnalysisView struct {
	Symbol        string         `json:"symbol"`
	DisplaySymbol string         `json:"display_symbol"`
	Name          string         `json:"name"`
	RangeLabel    string         `json:"range"`
	Currency      string         `json:"currency"`
	Header        Header         `json:"header"`
	MarketStatus  string         `json:"market_status"`
	KeyStats      []Row          `json:"key_statistics"`
	Profile       Profile        `json:"profile"`
	Metrics       []Row          `json:"financial_metrics"`
	News          []NewsRow      `json:"news"`
	Indicators    []IndicatorRow `json:"indicators"`
	ChartJSON     string         `json:"-"`
	FetchedAt     string         `json:"fetched_at"`
	Error         string         `json:"error,omitempty"`
}

// Features lists what the dashboard offers, for the home page.
var Features = []string{
	"Price Data: current market prices and daily changes",
	"Technical Analysis: price trends with moving averages, Bollinger Bands and RSI",
	"Company Profile: company information and ESG scores",
	"Financial Metrics: key financial ratios and performance metrics",
	"Latest News: company-specific headlines",
}

// HomeInput carries the home page selections.
type HomeInput struct {
	Title          string
	Tickers        []string
	SelectedSymbol string
	SelectedPeriod model.Period
	Custom         bool
	Start, End     time.Time
	Quotes         []quotes.Quote
	Error          string
	Now            time.Time
}

// NewHomeView builds the home page model from the current selections.
func NewHomeView(in HomeInput) HomeView {
	v := HomeView{
		Title:     in.Title,
		Custom:    in.Custom,
		Features:  Features,
		Error:     in.Error,
		UpdatedAt: in.Now.Format("2006-01-02 15:04:05"),
	}
	selected := in.SelectedSymbol
	if selected == "" && len(in.Tickers) > 0 {
		selected = in.Tickers[0]
	}
	for _, sym := range in.Tickers {
		v.Tickers = append(v.Tickers, Option{Value: sym, Label: DisplaySymbol(sym), Selected: sym == selected})
	}
	period := in.SelectedPeriod
	if period == "" {
		period = model.Period1y
	}
	for _, p := range model.Periods {
		v.Periods = append(v.Periods, Option{Value: string(p), Label: p.Label(), Selected: p == period})
	}

	end := in.End
	if end.IsZero() {
		end = in.Now
	}
	start := in.Start
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	v.Start = start.Format(model.DateLayout)
	v.End = end.Format(model.DateLayout)

	for _, q := range in.Quotes {
		row := QuoteRow{Symbol: DisplaySymbol(q.Symbol), Name: q.Name, Price: q.Price, Change: q.ChangeFmt}
		if q.Err == "" && q.ChangeRaw != nil {
			row.Class = "down"
			if q.Up() {
				row.Class = "up"
			}
		}
		v.Quotes = append(v.Quotes, row)
	}
	return v
}

// IndicatorRowCount is how many trailing sessions the indicator table shows.
const IndicatorRowCount = 10

// NewAnalysisView builds the analysis page model. fig may be nil when no chart
// is wanted.
func NewAnalysisView(a *model.Analysis, fig *chart.Figure, now time.Time) (AnalysisView, error) {
	meta := a.Metadata
	if meta == nil {
		meta = &model.StockMetadata{Symbol: a.Symbol}
	}
	cur := CurrencySymbol(a.Symbol)

	v := AnalysisView{
		Symbol:        a.Symbol,
		DisplaySymbol: DisplaySymbol(a.Symbol),
		Name:          meta.DisplayName(),
		RangeLabel:    a.Range.Period.Label(),
		Currency:      cur,
		Header:        NewHeader(a.Symbol, meta),
		MarketStatus:  MarketStatus(meta),
		KeyStats:      KeyStatistics(meta),
		Profile:       CompanyProfile(a.Symbol, meta),
		Metrics:       FinancialMetrics(a.Symbol, meta),
		News:          NewsRows(a.News, now),
		Indicators:    IndicatorRows(a.Table, IndicatorRowCount),
		FetchedAt:     a.FetchedAt.Format("2006-01-02 15:04:05"),
	}
	if a.Range.Custom() {
		v.RangeLabel = a.Range.String()
	}
	if fig != nil {
		data, err := fig.PlotlyJSON()
		if err != nil {
			return v, fmt.Errorf("chart json: %w", err)
		}
		v.ChartJSON = string(data)
	}
	return v, nil
}

// ErrorAnalysisView is the analysis page shown when loading failed.
func ErrorAnalysisView(symbol, msg string) AnalysisView {
	return AnalysisView{Symbol: symbol, DisplaySymbol: DisplaySymbol(symbol), Name: symbol, Error: msg}
}

// NewHeader formats the headline metrics.
func NewHeader(symbol string, m *model.StockMetadata) Header {
	cur := CurrencySymbol(symbol)
	change, class := FormatChange(m.ChangePercent)
	return Header{
		Price:       FormatMoney(cur, m.CurrentPrice),
		Change:      change,
		ChangeClass: class,
		High52:      FormatMoney(cur, m.FiftyTwoWeekHigh),
		Low52:       FormatMoney(cur, m.FiftyTwoWeekLow),
		MarketCap:   FormatMoney(cur, m.MarketCap),
		Volume:      FormatOptional(m.Volume),
	}
}

// MarketStatus is "Open" when the provider reports a regular-session open.
func MarketStatus(m *model.StockMetadata) string {
	if m != nil && m.RegularMarketOpen != nil && *m.RegularMarketOpen != 0 {
		return "Open"
	}
	return "Closed"
}

// KeyStatistics returns the five-row statistics table.
func KeyStatistics(m *model.StockMetadata) []Row {
	return []Row{
		{"P/E Ratio", FormatOptional(m.TrailingPE)},
		{"EPS", FormatOptional(m.TrailingEPS)},
		{"52 Week High", FormatOptional(m.FiftyTwoWeekHigh)},
		{"52 Week Low", FormatOptional(m.FiftyTwoWeekLow)},
		{"Beta", FormatOptional(m.Beta)},
	}
}

// FinancialMetrics returns the twelve financial metrics in display order.
func FinancialMetrics(symbol string, m *model.StockMetadata) []Row {
	cur := CurrencySymbol(symbol)
	return []Row{
		{"Market Cap", FormatMoney(cur, m.MarketCap)},
		{"P/E Ratio", FormatOptional(m.TrailingPE)},
		{"EPS (TTM)", FormatMoney(cur, m.TrailingEPS)},
		{"Beta", FormatOptional(m.Beta)},
		{"Dividend Yield", FormatRatioPercent(m.DividendYield)},
		{"Revenue (TTM)", FormatMoney(cur, m.TotalRevenue)},
		{"Profit Margin", FormatRatioPercent(m.ProfitMargins)},
		{"Operating Margin", FormatRatioPercent(m.OperatingMargins)},
		{"ROE", FormatRatioPercent(m.ReturnOnEquity)},
		{"ROA", FormatRatioPercent(m.ReturnOnAssets)},
		{"Debt to Equity", FormatOptional(m.DebtToEquity)},
		{"Current Ratio", FormatOptional(m.CurrentRatio)},
	}
}

// CompanyProfile formats the profile tab. ESG is present only when the
// provider reports a total score.
func CompanyProfile(symbol string, m *model.StockMetadata) Profile {
	p := Profile{
		Summary:        FormatText(m.BusinessSummary),
		Sector:         FormatText(m.Sector),
		Industry:       FormatText(m.Industry),
		Website:        FormatText(m.Website),
		Employees:      FormatCount(m.FullTimeEmployees),
		Headquarters:   NA,
		Exchange:       FormatText(m.Exchange),
		Currency:       FormatText(m.Currency),
		MarketCap:      FormatMoney(CurrencySymbol(symbol), m.MarketCap),
		EarningsDate:   FormatDate(m.EarningsDate),
		ExDividendDate: FormatDate(m.ExDividendDate),
		FiscalYearEnd:  FormatDate(m.LastFiscalYearEnd),
	}
	switch {
	case m.City != "" && m.Country != "":
		p.Headquarters = m.City + ", " + m.Country
	case m.City != "":
		p.Headquarters = m.City
	case m.Country != "":
		p.Headquarters = m.Country
	}
	if m.SustainabilityScore != nil {
		p.ESG = &ESG{
			Total:       FormatOptional(m.SustainabilityScore),
			Environment: FormatOptional(m.EnvironmentScore),
			Social:      FormatOptional(m.SocialScore),
			Governance:  FormatOptional(m.GovernanceScore),
		}
	}
	return p
}

// NewsRows formats headlines in provider order.
func NewsRows(items []model.NewsItem, now time.Time) []NewsRow {
	rows := make([]NewsRow, 0, len(items))
	for _, n := range items {
		row := NewsRow{Title: n.Title, Link: n.Link, Publisher: n.Publisher, Date: NA}
		if !n.Published.IsZero() {
			row.Date = n.Published.Format(model.DateLayout)
			row.Age = humanize.RelTime(n.Published, now, "ago", "from now")
		}
		rows = append(rows, row)
	}
	return rows
}

// IndicatorRows formats the last n sessions, oldest first.
func IndicatorRows(t *model.IndicatorTable, n int) []IndicatorRow {
	total := t.Len()
	if total == 0 {
		return []IndicatorRow{}
	}
	start := 0
	if n > 0 && total > n {
		start = total - n
	}
	rows := make([]IndicatorRow, 0, total-start)
	for i := start; i < total; i++ {
		rows = append(rows, IndicatorRow{
			Date:       t.Bars[i].Time.Format(model.DateLayout),
			Close:      fmt.Sprintf("%.2f", t.Bars[i].Close),
			SMA20:      FormatPoint(t.SMA20[i]),
			SMA50:      FormatPoint(t.SMA50[i]),
			RSI:        FormatPoint(t.RSI[i]),
			MACD:       FormatPoint(t.MACD[i]),
			SignalLine: FormatPoint(t.SignalLine[i]),
			BBUpper:    FormatPoint(t.BBUpper[i]),
			BBLower:    FormatPoint(t.BBLower[i]),
		})
	}
	return rows
}
