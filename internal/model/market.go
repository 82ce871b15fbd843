package model

import (
	"strings"
	"time"
)

// OHLCV represents a single trading session.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Up reports whether the session closed at or above its open.
func (b OHLCV) Up() bool { return b.Close >= b.Open }

// Closes extracts the close column.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Analysis is the request-scoped result of one analyze action.
type Analysis struct {
	Symbol    string
	Range     Range
	Table     *IndicatorTable
	Metadata  *StockMetadata
	News      []NewsItem
	FetchedAt time.Time
}

// IsIndianListing reports whether symbol trades on NSE (.NS) or BSE (.BO).
func IsIndianListing(symbol string) bool {
	s := strings.ToUpper(symbol)
	return strings.HasSuffix(s, ".NS") || strings.HasSuffix(s, ".BO")
}
