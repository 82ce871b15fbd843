package collector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"StockLens/internal/model"
)

var (
	// ErrFetch wraps any provider or network failure.
	ErrFetch = errors.New("fetch failed")
	// ErrInvalidSymbol is returned for empty or malformed tickers.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrInvalidRange is returned for unknown periods or bad date pairs.
	ErrInvalidRange = model.ErrInvalidRange
	// ErrNoData is returned when the provider has no sessions for the range.
	ErrNoData = errors.New("no data returned")
)

// MaxNews is the number of headlines kept per analysis.
const MaxNews = 5

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	Name() string
	FetchHistory(ctx context.Context, symbol string, r model.Range) ([]model.OHLCV, error)
	FetchMetadata(ctx context.Context, symbol string) (*model.StockMetadata, error)
	FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,20}$`)

// NormalizeSymbol trims and upper-cases a ticker and checks its characters.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return s, nil
}

// ValidateRange checks a range before it is sent to a provider.
func ValidateRange(r model.Range) error {
	if r.Custom() {
		if r.Start.IsZero() || r.End.IsZero() || !r.Start.Before(r.End) {
			return fmt.Errorf("%w: custom range %s", ErrInvalidRange, r)
		}
		return nil
	}
	if !r.Period.Valid() {
		return fmt.Errorf("%w: unknown period %q", ErrInvalidRange, r.Period)
	}
	return nil
}
