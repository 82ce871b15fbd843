package strategy

import (
	"StockLens/internal/model"
)

// RSI thresholds for overbought and oversold sessions.
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
)

// Range position thresholds for the near-high and near-low alerts.
const (
	NearHigh = 0.95
	NearLow  = 0.05
)

// classifyRSI maps the latest RSI value to a zone. Bounds are inclusive.
func classifyRSI(p model.Point) model.SignalState {
	switch {
	case !p.Valid:
		return model.StateUndefined
	case p.Value >= RSIOverbought:
		return model.StateOverbought
	case p.Value <= RSIOversold:
		return model.StateOversold
	}
	return model.StateNeutral
}

// minCrossBars is the history needed before a crossover counts. MACD and its
// signal line are both seeded at zero on the first bar.
const minCrossBars = 3

// classifyMACD compares MACD with its signal line on the last bar and detects
// a crossover between the last two bars.
func classifyMACD(macd, signal []model.Point) (state, cross model.SignalState) {
	n := len(macd)
	if n == 0 || len(signal) != n {
		return model.StateUndefined, ""
	}
	last, lastSig := macd[n-1], signal[n-1]
	if !last.Valid || !lastSig.Valid {
		return model.StateUndefined, ""
	}

	switch {
	case last.Value > lastSig.Value:
		state = model.StateAbove
	case last.Value < lastSig.Value:
		state = model.StateBelow
	default:
		state = model.StateNeutral
	}

	if n < minCrossBars || !macd[n-2].Valid || !signal[n-2].Valid {
		return state, ""
	}
	prevDiff := macd[n-2].Value - signal[n-2].Value
	switch {
	case prevDiff <= 0 && state == model.StateAbove:
		cross = model.CrossBullish
	case prevDiff >= 0 && state == model.StateBelow:
		cross = model.CrossBearish
	}
	return state, cross
}

// classifyBands places a close relative to the Bollinger envelope.
func classifyBands(close float64, upper, lower model.Point) model.SignalState {
	switch {
	case !upper.Valid || !lower.Valid:
		return model.StateUndefined
	case close > upper.Value:
		return model.StateAbove
	case close < lower.Value:
		return model.StateBelow
	}
	return model.StateInside
}
