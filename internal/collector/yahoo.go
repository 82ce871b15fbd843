package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"StockLens/internal/model"
)

const (
	defaultYahooBase  = "https://query1.finance.yahoo.com"
	defaultUserAgent  = "Mozilla/5.0"
	defaultTimeout    = 30 * time.Second
	maxYahooBodyBytes = 10 << 20
)

// quoteSummaryModules are the sections merged into StockMetadata. yf-go has
// no constant for esgScores.
var quoteSummaryModules = []yfgo.QuoteSummaryModule{
	yfgo.ModulePrice,
	yfgo.ModuleSummaryDetail,
	yfgo.ModuleDefaultKeyStatistics,
	yfgo.ModuleFinancialData,
	yfgo.ModuleAssetProfile,
	yfgo.QuoteSummaryModule("esgScores"),
	yfgo.ModuleCalendarEvents,
}

// YahooOptions configures a YahooFetcher. Zero values use defaults.
type YahooOptions struct {
	BaseURL   string
	Proxy     string
	UserAgent string
	Timeout   time.Duration
	// Transport replaces the proxy-aware default transport when set.
	Transport http.RoundTripper
}

// YahooFetcher implements Fetcher using the Yahoo Finance public API. Chart
// history and news go straight to the public endpoints. quoteSummary needs a
// cookie and crumb, so metadata goes through yf-go.
type YahooFetcher struct {
	Client    *http.Client
	Summary   *yfgo.Client
	BaseURL   string
	UserAgent string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	transport := opts.Transport
	if transport == nil {
		t := &http.Transport{Proxy: http.ProxyFromEnvironment}
		if opts.Proxy != "" {
			if u, err := url.Parse(opts.Proxy); err == nil {
				t.Proxy = http.ProxyURL(u)
			}
		}
		transport = t
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultYahooBase
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		// No response cache on the analyze path.
		Summary: yfgo.NewClient(
			yfgo.WithHTTPClient(&http.Client{Timeout: opts.Timeout, Transport: transport}),
			yfgo.WithCacheDisabled(),
		),
		BaseURL:   strings.TrimRight(opts.BaseURL, "/"),
		UserAgent: opts.UserAgent,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NIFTY":  "^NSEI",
			"SENSEX": "^BSESN",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func (f *YahooFetcher) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := f.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxYahooBodyBytes))
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

type yahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooChart is the response structure from the chart API. Null prices decode
// to nil pointers.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset    int    `json:"gmtoffset"`
				ExchangeTZ   string `json:"exchangeTimezoneName"`
				InstrumentTZ string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooAPIError `json:"error"`
	} `json:"chart"`
}

// FetchHistory returns daily bars for the range, oldest first. Custom ranges
// map to period1/period2 with period2 exclusive.
// yf-go truncates chart bodies at 1 MiB, which max-range daily history can
// exceed, so this reads the endpoint directly.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, r model.Range) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("includePrePost", "false")
	q.Set("events", "div,splits")
	if r.Custom() {
		q.Set("period1", strconv.FormatInt(r.Start.Unix(), 10))
		q.Set("period2", strconv.FormatInt(r.End.Unix(), 10))
	} else {
		q.Set("range", string(r.Period))
	}

	var chart yahooChart
	path := "/v8/finance/chart/" + url.PathEscape(f.yahooSymbol(symbol))
	if err := f.getJSON(ctx, path, q, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	loc := time.UTC
	if result.Meta.GMTOffset != 0 || result.Meta.ExchangeTZ != "" {
		loc = time.FixedZone(result.Meta.ExchangeTZ, result.Meta.GMTOffset)
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue // skip null bars (holidays etc.)
		}
		vol := 0.0
		if v := at(quote.Volume, i); v != nil {
			vol = *v
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
			Volume: vol,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupe(bars), nil
}

// yfRaw is Yahoo's {raw, fmt} number wrapper. Missing fields arrive as {}.
type yfRaw struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (r *yfRaw) ptr() *float64 {
	if r == nil || r.Raw == nil {
		return nil
	}
	v := *r.Raw
	return &v
}

func (r *yfRaw) scaled(k float64) *float64 {
	p := r.ptr()
	if p != nil {
		*p *= k
	}
	return p
}

func (r *yfRaw) date() *time.Time {
	p := r.ptr()
	if p == nil || *p <= 0 {
		return nil
	}
	t := time.Unix(int64(*p), 0).UTC()
	return &t
}

type yahooSummaryResult struct {
	Price *struct {
		ShortName                  string `json:"shortName"`
		LongName                   string `json:"longName"`
		Currency                   string `json:"currency"`
		ExchangeName               string `json:"exchangeName"`
		RegularMarketPrice         *yfRaw `json:"regularMarketPrice"`
		RegularMarketChangePercent *yfRaw `json:"regularMarketChangePercent"`
		RegularMarketOpen          *yfRaw `json:"regularMarketOpen"`
		RegularMarketVolume        *yfRaw `json:"regularMarketVolume"`
		MarketCap                  *yfRaw `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		TrailingPE       *yfRaw `json:"trailingPE"`
		Beta             *yfRaw `json:"beta"`
		FiftyTwoWeekHigh *yfRaw `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  *yfRaw `json:"fiftyTwoWeekLow"`
		DividendYield    *yfRaw `json:"dividendYield"`
		ExDividendDate   *yfRaw `json:"exDividendDate"`
		MarketCap        *yfRaw `json:"marketCap"`
		Volume           *yfRaw `json:"volume"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		TrailingEps       *yfRaw `json:"trailingEps"`
		Beta              *yfRaw `json:"beta"`
		LastFiscalYearEnd *yfRaw `json:"lastFiscalYearEnd"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		CurrentPrice     *yfRaw `json:"currentPrice"`
		TotalRevenue     *yfRaw `json:"totalRevenue"`
		ProfitMargins    *yfRaw `json:"profitMargins"`
		OperatingMargins *yfRaw `json:"operatingMargins"`
		ReturnOnEquity   *yfRaw `json:"returnOnEquity"`
		ReturnOnAssets   *yfRaw `json:"returnOnAssets"`
		DebtToEquity     *yfRaw `json:"debtToEquity"`
		CurrentRatio     *yfRaw `json:"currentRatio"`
	} `json:"financialData"`
	AssetProfile *struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		Website             string `json:"website"`
		City                string `json:"city"`
		Country             string `json:"country"`
		FullTimeEmployees   *int64 `json:"fullTimeEmployees"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"assetProfile"`
	EsgScores *struct {
		TotalEsg         *yfRaw `json:"totalEsg"`
		EnvironmentScore *yfRaw `json:"environmentScore"`
		SocialScore      *yfRaw `json:"socialScore"`
		GovernanceScore  *yfRaw `json:"governanceScore"`
	} `json:"esgScores"`
	CalendarEvents *struct {
		Earnings *struct {
			EarningsDate []yfRaw `json:"earningsDate"`
		} `json:"earnings"`
		ExDividendDate *yfRaw `json:"exDividendDate"`
	} `json:"calendarEvents"`
}

// FetchMetadata merges the quoteSummary modules into one StockMetadata.
// Fields the provider omits stay nil. yf-go obtains the crumb and refreshes
// it once on a 401.
func (f *YahooFetcher) FetchMetadata(ctx context.Context, symbol string) (*model.StockMetadata, error) {
	raw, err := f.Summary.QuoteSummary(ctx, f.yahooSymbol(symbol), quoteSummaryModules)
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary: %w", err)
	}
	// yf-go returns the first result untyped; re-decode it into our shape.
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary: %w", err)
	}
	var res yahooSummaryResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	return res.metadata(symbol), nil
}

func (r *yahooSummaryResult) metadata(symbol string) *model.StockMetadata {
	m := &model.StockMetadata{Symbol: symbol}
	if p := r.Price; p != nil {
		m.ShortName = p.ShortName
		m.LongName = p.LongName
		m.Currency = p.Currency
		m.Exchange = p.ExchangeName
		m.CurrentPrice = p.RegularMarketPrice.ptr()
		// quoteSummary reports the change as a fraction.
		m.ChangePercent = p.RegularMarketChangePercent.scaled(100)
		m.RegularMarketOpen = p.RegularMarketOpen.ptr()
		m.Volume = p.RegularMarketVolume.ptr()
		m.MarketCap = p.MarketCap.ptr()
	}
	if d := r.SummaryDetail; d != nil {
		m.TrailingPE = d.TrailingPE.ptr()
		m.Beta = d.Beta.ptr()
		m.FiftyTwoWeekHigh = d.FiftyTwoWeekHigh.ptr()
		m.FiftyTwoWeekLow = d.FiftyTwoWeekLow.ptr()
		m.DividendYield = d.DividendYield.ptr()
		m.ExDividendDate = d.ExDividendDate.date()
		m.MarketCap = firstNonNil(m.MarketCap, d.MarketCap.ptr())
		m.Volume = firstNonNil(m.Volume, d.Volume.ptr())
	}
	if k := r.DefaultKeyStatistics; k != nil {
		m.TrailingEPS = k.TrailingEps.ptr()
		m.Beta = firstNonNil(m.Beta, k.Beta.ptr())
		m.LastFiscalYearEnd = k.LastFiscalYearEnd.date()
	}
	if fd := r.FinancialData; fd != nil {
		m.CurrentPrice = firstNonNil(m.CurrentPrice, fd.CurrentPrice.ptr())
		m.TotalRevenue = fd.TotalRevenue.ptr()
		m.ProfitMargins = fd.ProfitMargins.ptr()
		m.OperatingMargins = fd.OperatingMargins.ptr()
		m.ReturnOnEquity = fd.ReturnOnEquity.ptr()
		m.ReturnOnAssets = fd.ReturnOnAssets.ptr()
		m.DebtToEquity = fd.DebtToEquity.ptr()
		m.CurrentRatio = fd.CurrentRatio.ptr()
	}
	if a := r.AssetProfile; a != nil {
		m.Sector = a.Sector
		m.Industry = a.Industry
		m.Website = a.Website
		m.City = a.City
		m.Country = a.Country
		m.FullTimeEmployees = a.FullTimeEmployees
		m.BusinessSummary = a.LongBusinessSummary
	}
	if e := r.EsgScores; e != nil {
		m.SustainabilityScore = e.TotalEsg.ptr()
		m.EnvironmentScore = e.EnvironmentScore.ptr()
		m.SocialScore = e.SocialScore.ptr()
		m.GovernanceScore = e.GovernanceScore.ptr()
	}
	if c := r.CalendarEvents; c != nil {
		if c.Earnings != nil && len(c.Earnings.EarningsDate) > 0 {
			m.EarningsDate = c.Earnings.EarningsDate[0].date()
		}
		if m.ExDividendDate == nil {
			m.ExDividendDate = c.ExDividendDate.date()
		}
	}
	return m
}

type yahooSearch struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// FetchNews returns up to limit headlines in provider order.
func (f *YahooFetcher) FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = MaxNews
	}
	q := url.Values{}
	q.Set("q", f.yahooSymbol(symbol))
	q.Set("quotesCount", "0")
	q.Set("newsCount", strconv.Itoa(limit))

	var resp yahooSearch
	if err := f.getJSON(ctx, "/v1/finance/search", q, &resp); err != nil {
		return nil, err
	}
	items := make([]model.NewsItem, 0, limit)
	for _, n := range resp.News {
		if len(items) == limit {
			break
		}
		items = append(items, model.NewsItem{
			Title:     n.Title,
			Published: time.Unix(n.ProviderPublishTime, 0).UTC(),
			Link:      n.Link,
			Publisher: n.Publisher,
		})
	}
	return items, nil
}

func at(col []*float64, i int) *float64 {
	if i < len(col) {
		return col[i]
	}
	return nil
}

// dedupe drops bars that repeat the previous timestamp; Yahoo sometimes
// appends the live session twice.
func dedupe(bars []model.OHLCV) []model.OHLCV {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Time.Equal(out[len(out)-1].Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func firstNonNil(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
