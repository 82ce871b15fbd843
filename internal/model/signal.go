package model

import (
	"strings"
	"time"
)

// SignalState is the classification of one indicator on the last bar.
type SignalState string

const (
	StateUndefined  SignalState = "undefined"
	StateNeutral    SignalState = "neutral"
	StateOverbought SignalState = "overbought"
	StateOversold   SignalState = "oversold"
	StateAbove      SignalState = "above"
	StateBelow      SignalState = "below"
	StateInside     SignalState = "inside"

	CrossBullish SignalState = "bullish_cross"
	CrossBearish SignalState = "bearish_cross"
)

// TechnicalSignal summarises where the latest session sits relative to the
// derived indicators of one symbol.
type TechnicalSignal struct {
	Symbol    string
	Date      time.Time
	Bars      int
	LastClose float64
	ChangePct *float64 // first to last close over the period

	RSI      Point
	RSIState SignalState

	MACD      Point
	Signal    Point
	MACDState SignalState
	Crossover SignalState // empty when the last bar did not cross

	BandState SignalState

	PeriodHigh    float64
	PeriodLow     float64
	RangePosition *float64 // 0 at the period low, 1 at the high

	Alerts []string
	Err    string
}

// Alert joins the alert list for single-line display.
func (s *TechnicalSignal) Alert() string {
	return strings.Join(s.Alerts, "; ")
}

// Digest is one scheduled or on-demand digest run.
type Digest struct {
	RunID   string
	At      time.Time
	Period  Period
	Signals []TechnicalSignal
}
