package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"StockLens/internal/model"
)

// MockFetcher returns deterministic data for development, offline mode and
// tests. Fixed Bars, Metadata and News override the generated values; the
// error fields force a failure from the matching call.
type MockFetcher struct {
	Price    float64
	Bars     []model.OHLCV
	Metadata *model.StockMetadata
	News     []model.NewsItem

	HistoryErr  error
	MetadataErr error
	NewsErr     error

	// Now anchors generated sessions; defaults to time.Now.
	Now func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, r model.Range) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if m.Bars != nil {
		out := make([]model.OHLCV, len(m.Bars))
		copy(out, m.Bars)
		return out, nil
	}
	end := m.now()
	count := sessionsFor(r, end)
	if r.Custom() {
		end = r.End.AddDate(0, 0, -1)
	}
	return generateMockBars(m.basePrice(symbol), count, end, seed(symbol)), nil
}

func (m *MockFetcher) FetchMetadata(ctx context.Context, symbol string) (*model.StockMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.MetadataErr != nil {
		return nil, m.MetadataErr
	}
	if m.Metadata != nil {
		meta := *m.Metadata
		return &meta, nil
	}

	price := m.basePrice(symbol)
	s := float64(seed(symbol) % 1000)
	currency := "USD"
	if model.IsIndianListing(symbol) {
		currency = "INR"
	}
	return &model.StockMetadata{
		Symbol:            symbol,
		ShortName:         symbol,
		LongName:          symbol + " Holdings Ltd",
		Currency:          currency,
		Exchange:          "MOCK",
		CurrentPrice:      f64(price),
		ChangePercent:     f64(math.Round((s/100-5)*100) / 100),
		RegularMarketOpen: f64(price * 0.995),
		Volume:            f64(1_000_000 + s*1000),
		MarketCap:         f64(price * 5e8),
		TrailingPE:        f64(15 + s/50),
		TrailingEPS:       f64(price / (15 + s/50)),
		Beta:              f64(0.8 + s/2000),
		FiftyTwoWeekHigh:  f64(price * 1.2),
		FiftyTwoWeekLow:   f64(price * 0.8),
		DividendYield:     f64(0.012),
		TotalRevenue:      f64(price * 1e8),
		ProfitMargins:     f64(0.18),
		OperatingMargins:  f64(0.24),
		ReturnOnEquity:    f64(0.21),
		ReturnOnAssets:    f64(0.09),
		DebtToEquity:      f64(45.5),
		CurrentRatio:      f64(1.4),
		Sector:            "Technology",
		Industry:          "Software",
		Website:           "https://example.com",
		City:              "Mumbai",
		Country:           "India",
		BusinessSummary:   symbol + " is a generated company used for offline runs.",
	}, nil
}

func (m *MockFetcher) FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.NewsErr != nil {
		return nil, m.NewsErr
	}
	if limit <= 0 {
		limit = MaxNews
	}
	if m.News != nil {
		if len(m.News) > limit {
			return m.News[:limit], nil
		}
		return m.News, nil
	}
	now := m.now()
	items := make([]model.NewsItem, limit)
	for i := range items {
		items[i] = model.NewsItem{
			Title:     fmt.Sprintf("%s headline %d", symbol, i+1),
			Published: now.Add(-time.Duration(i+1) * 6 * time.Hour),
			Link:      fmt.Sprintf("https://example.com/news/%s/%d", symbol, i+1),
			Publisher: "Mock Wire",
		}
	}
	return items, nil
}

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockFetcher) basePrice(symbol string) float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 50 + float64(seed(symbol)%450)
}

// sessionsFor approximates the number of weekday sessions in a range.
func sessionsFor(r model.Range, now time.Time) int {
	if r.Custom() {
		return weekdaysBetween(r.Start, r.End)
	}
	switch r.Period {
	case model.Period1d:
		return 1
	case model.Period5d:
		return 5
	case model.Period1mo:
		return 21
	case model.Period3mo:
		return 63
	case model.Period6mo:
		return 126
	case model.Period1y:
		return 252
	case model.Period2y:
		return 504
	case model.Period5y:
		return 1260
	case model.PeriodYTD:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return max(1, weekdaysBetween(start, now))
	default:
		return 2520
	}
}

func weekdaysBetween(start, end time.Time) int {
	n := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// generateMockBars walks back from end over weekdays and builds a smooth
// oscillating series around basePrice.
func generateMockBars(basePrice float64, count int, end time.Time, s uint32) []model.OHLCV {
	if count <= 0 {
		return []model.OHLCV{}
	}
	days := make([]time.Time, 0, count)
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for len(days) < count {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, -1)
	}

	phase := float64(s%17) / 3
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		t := float64(i)
		p := basePrice * (1 + 0.06*math.Sin(t/9+phase) + 0.02*math.Sin(t/2.5) + 0.0005*(t-float64(count)/2))
		open := p * (1 - 0.004*math.Cos(t/1.7))
		bars[i] = model.OHLCV{
			Time:   days[count-1-i],
			Open:   open,
			High:   math.Max(open, p) * 1.006,
			Low:    math.Min(open, p) * 0.994,
			Close:  p,
			Volume: math.Round(1_000_000 * (1.2 + 0.5*math.Sin(t/4+phase))),
		}
	}
	return bars
}

func seed(symbol string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return h.Sum32()
}

func f64(v float64) *float64 { return &v }
