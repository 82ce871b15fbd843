package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockLens/internal/calculator"
	"StockLens/internal/chart"
	"StockLens/internal/logger"
	"StockLens/internal/model"
)

// Report is one completed analysis together with its chart.
type Report struct {
	*model.Analysis
	Figure *chart.Figure
}

// Collector orchestrates data fetching, indicator computation and charting.
type Collector struct {
	Fetcher   Fetcher
	NewsLimit int
	// Timeout bounds each provider call. Zero leaves the caller's context as is.
	Timeout time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, timeout time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, NewsLimit: MaxNews, Timeout: timeout}
}

// Analyze runs one fetch-compute-render cycle for symbol over r. History or
// metadata failures return an error wrapping ErrFetch. News is best effort:
// a failure is logged and yields an empty list.
func (c *Collector) Analyze(ctx context.Context, symbol string, r model.Range) (*Report, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ValidateRange(r); err != nil {
		return nil, err
	}

	bars, err := c.history(ctx, sym, r)
	if err != nil {
		logger.Log.Errorf("%s history (%s) via %s: %v", sym, r, c.Fetcher.Name(), err)
		return nil, err
	}

	meta, err := c.metadata(ctx, sym)
	if err != nil {
		logger.Log.Errorf("%s metadata via %s: %v", sym, c.Fetcher.Name(), err)
		return nil, err
	}

	table := calculator.Calculate(bars)
	analysis := &model.Analysis{
		Symbol:    sym,
		Range:     r,
		Table:     table,
		Metadata:  meta,
		News:      c.news(ctx, sym),
		FetchedAt: time.Now(),
	}
	return &Report{Analysis: analysis, Figure: chart.Build(table, sym)}, nil
}

// History fetches and validates bars only; the digest uses it to skip the
// metadata and news calls.
func (c *Collector) History(ctx context.Context, symbol string, r model.Range) (*model.IndicatorTable, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ValidateRange(r); err != nil {
		return nil, err
	}
	bars, err := c.history(ctx, sym, r)
	if err != nil {
		return nil, err
	}
	return calculator.Calculate(bars), nil
}

func (c *Collector) history(ctx context.Context, sym string, r model.Range) ([]model.OHLCV, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	bars, err := c.Fetcher.FetchHistory(ctx, sym, r)
	if err != nil {
		return nil, fmt.Errorf("%w: history for %s: %w", ErrFetch, sym, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: history for %s: %w", ErrFetch, sym, ErrNoData)
	}
	return bars, nil
}

func (c *Collector) metadata(ctx context.Context, sym string) (*model.StockMetadata, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	meta, err := c.Fetcher.FetchMetadata(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata for %s: %w", ErrFetch, sym, err)
	}
	if meta == nil {
		meta = &model.StockMetadata{}
	}
	meta.Symbol = sym
	return meta, nil
}

func (c *Collector) news(ctx context.Context, sym string) []model.NewsItem {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	limit := c.NewsLimit
	if limit <= 0 || limit > MaxNews {
		limit = MaxNews
	}
	items, err := c.Fetcher.FetchNews(ctx, sym, limit)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Log.Warnf("%s news unavailable: %v", sym, err)
		}
		return []model.NewsItem{}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (c *Collector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}
