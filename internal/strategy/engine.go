// Package strategy classifies the latest session of an indicator table into
// discrete signals used by the digest and chat summaries.
package strategy

import (
	"fmt"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

// Evaluate computes the technical signal for the last bar of t.
// A nil or empty table yields a signal carrying only Err.
func Evaluate(symbol string, t *model.IndicatorTable) *model.TechnicalSignal {
	sig := &model.TechnicalSignal{Symbol: symbol}
	if t.Len() == 0 {
		sig.Err = "no data"
		return sig
	}

	n := t.Len()
	last := t.Bars[n-1]
	sig.Date = last.Time
	sig.Bars = n
	sig.LastClose = last.Close
	if first := t.Bars[0].Close; first != 0 && n > 1 {
		pct := (last.Close - first) / first * 100
		sig.ChangePct = &pct
	}

	sig.RSI = model.Last(t.RSI)
	sig.RSIState = classifyRSI(sig.RSI)

	sig.MACD = model.Last(t.MACD)
	sig.Signal = model.Last(t.SignalLine)
	sig.MACDState, sig.Crossover = classifyMACD(t.MACD, t.SignalLine)

	sig.BandState = classifyBands(last.Close, model.Last(t.BBUpper), model.Last(t.BBLower))

	if high, low, err := calculator.PeriodRange(t.Bars, 0); err == nil {
		sig.PeriodHigh, sig.PeriodLow = high, low
		if pos, err := calculator.RangePosition(last.Close, high, low); err == nil {
			sig.RangePosition = &pos
		}
	}

	sig.Alerts = alerts(sig)
	return sig
}

func alerts(sig *model.TechnicalSignal) []string {
	var out []string
	switch sig.RSIState {
	case model.StateOverbought:
		out = append(out, fmt.Sprintf("RSI overbought (%.1f)", sig.RSI.Value))
	case model.StateOversold:
		out = append(out, fmt.Sprintf("RSI oversold (%.1f)", sig.RSI.Value))
	}
	switch sig.Crossover {
	case model.CrossBullish:
		out = append(out, "MACD bullish crossover")
	case model.CrossBearish:
		out = append(out, "MACD bearish crossover")
	}
	switch sig.BandState {
	case model.StateAbove:
		out = append(out, "Close above upper band")
	case model.StateBelow:
		out = append(out, "Close below lower band")
	}
	if sig.RangePosition != nil && sig.PeriodHigh > sig.PeriodLow {
		switch {
		case *sig.RangePosition >= NearHigh:
			out = append(out, "Near period high")
		case *sig.RangePosition <= NearLow:
			out = append(out, "Near period low")
		}
	}
	return out
}
