// Package calculator computes technical indicators over OHLCV series.
// Every function here is pure: inputs are never modified.
package calculator

import "StockLens/internal/model"

// Moving average windows.
const (
	SMAShortPeriod = 20
	SMALongPeriod  = 50
)

// Calculate derives SMA_20, SMA_50, RSI, MACD, Signal_Line and the Bollinger
// bands from the close column. The returned table owns a copy of bars.
func Calculate(bars []model.OHLCV) *model.IndicatorTable {
	own := make([]model.OHLCV, len(bars))
	copy(own, bars)
	closes := model.Closes(own)

	t := &model.IndicatorTable{
		Bars:  own,
		SMA20: SMASeries(closes, SMAShortPeriod),
		SMA50: SMASeries(closes, SMALongPeriod),
		RSI:   RSISeries(closes, RSIPeriod),
	}
	t.MACD, t.SignalLine = MACDSeries(closes)
	t.BBMiddle, t.BBUpper, t.BBLower = BollingerSeries(closes, BollingerPeriod, BollingerWidth)
	return t
}

// Recalculate recomputes every derived column from t's bars. Existing derived
// values are discarded, so applying it repeatedly yields the same table.
func Recalculate(t *model.IndicatorTable) *model.IndicatorTable {
	if t == nil {
		return Calculate(nil)
	}
	return Calculate(t.Bars)
}
