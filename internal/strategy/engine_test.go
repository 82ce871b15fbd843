package strategy

import (
	"math"
	"testing"
	"time"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

func linearBars(n int, start, step float64) []model.OHLCV {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := start + float64(i)*step
		bars[i] = model.OHLCV{Time: t0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return bars
}

func pts(vals ...float64) []model.Point {
	out := make([]model.Point, len(vals))
	for i, v := range vals {
		out[i] = model.Defined(v)
	}
	return out
}

func hasAlert(sig *model.TechnicalSignal, want string) bool {
	for _, a := range sig.Alerts {
		if a == want {
			return true
		}
	}
	return false
}

func TestEvaluate_RisingMarket(t *testing.T) {
	sig := Evaluate("AAPL", calculator.Calculate(linearBars(60, 100, 1)))

	if sig.Err != "" {
		t.Fatalf("unexpected error: %s", sig.Err)
	}
	if sig.Bars != 60 || sig.LastClose != 159 {
		t.Errorf("got bars=%d close=%.2f", sig.Bars, sig.LastClose)
	}
	if sig.RSIState != model.StateOverbought {
		t.Errorf("expected overbought, got %s", sig.RSIState)
	}
	if sig.MACDState != model.StateAbove {
		t.Errorf("expected MACD above signal, got %s", sig.MACDState)
	}
	if sig.Crossover != "" {
		t.Errorf("unexpected crossover %s", sig.Crossover)
	}
	if sig.BandState != model.StateInside {
		t.Errorf("expected inside bands, got %s", sig.BandState)
	}
	if sig.PeriodHigh != 160 || sig.PeriodLow != 99 {
		t.Errorf("range = %.0f/%.0f", sig.PeriodHigh, sig.PeriodLow)
	}
	if sig.ChangePct == nil || math.Abs(*sig.ChangePct-59) > 1e-9 {
		t.Errorf("change pct = %v", sig.ChangePct)
	}
	if !hasAlert(sig, "RSI overbought (100.0)") || !hasAlert(sig, "Near period high") {
		t.Errorf("alerts = %v", sig.Alerts)
	}
}

func TestEvaluate_FallingMarket(t *testing.T) {
	sig := Evaluate("TCS.NS", calculator.Calculate(linearBars(60, 159, -1)))

	if sig.RSIState != model.StateOversold {
		t.Errorf("expected oversold, got %s", sig.RSIState)
	}
	if sig.MACDState != model.StateBelow {
		t.Errorf("expected MACD below signal, got %s", sig.MACDState)
	}
	if !hasAlert(sig, "RSI oversold (0.0)") || !hasAlert(sig, "Near period low") {
		t.Errorf("alerts = %v", sig.Alerts)
	}
}

func TestEvaluate_ShortSeries(t *testing.T) {
	sig := Evaluate("X", calculator.Calculate(linearBars(5, 100, 1)))

	if sig.RSIState != model.StateUndefined {
		t.Errorf("expected undefined RSI, got %s", sig.RSIState)
	}
	if sig.BandState != model.StateUndefined {
		t.Errorf("expected undefined bands, got %s", sig.BandState)
	}
	// MACD is defined from the first row.
	if sig.MACDState == model.StateUndefined {
		t.Error("expected MACD to be classified")
	}
}

func TestEvaluate_NoCrossoverOnSecondBar(t *testing.T) {
	for _, step := range []float64{5, -5} {
		sig := Evaluate("X", calculator.Calculate(linearBars(2, 100, step)))
		if sig.Crossover != "" {
			t.Errorf("step %v: unexpected crossover %s", step, sig.Crossover)
		}
		if hasAlert(sig, "MACD bullish crossover") || hasAlert(sig, "MACD bearish crossover") {
			t.Errorf("step %v: unexpected crossover alert in %v", step, sig.Alerts)
		}
	}
}

func TestEvaluate_Empty(t *testing.T) {
	for _, tbl := range []*model.IndicatorTable{nil, calculator.Calculate(nil)} {
		sig := Evaluate("X", tbl)
		if sig.Err == "" {
			t.Error("expected error for empty table")
		}
		if len(sig.Alerts) != 0 {
			t.Errorf("unexpected alerts %v", sig.Alerts)
		}
	}
}

func TestClassifyRSI(t *testing.T) {
	tests := []struct {
		in   model.Point
		want model.SignalState
	}{
		{model.Undefined(), model.StateUndefined},
		{model.Defined(70), model.StateOverbought},
		{model.Defined(69.99), model.StateNeutral},
		{model.Defined(30), model.StateOversold},
		{model.Defined(30.01), model.StateNeutral},
		{model.Defined(0), model.StateOversold},
	}
	for _, tt := range tests {
		if got := classifyRSI(tt.in); got != tt.want {
			t.Errorf("classifyRSI(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassifyMACD(t *testing.T) {
	tests := []struct {
		name      string
		macd, sig []model.Point
		wantState model.SignalState
		wantCross model.SignalState
	}{
		{"bullish cross", pts(0, -1, 1), pts(0, 0, 0), model.StateAbove, model.CrossBullish},
		{"bullish from touch", pts(0, 0, 1), pts(0, 0, 0), model.StateAbove, model.CrossBullish},
		{"bearish cross", pts(0, 1, -1), pts(0, 0, 0), model.StateBelow, model.CrossBearish},
		{"stays above", pts(0, 1, 2), pts(0, 0, 0), model.StateAbove, ""},
		{"stays below", pts(0, -2, -1), pts(0, 0, 0), model.StateBelow, ""},
		{"equal", pts(0, 1, 0), pts(0, 0, 0), model.StateNeutral, ""},
		{"no cross from seeded first bar", pts(0, 1), pts(0, 0), model.StateAbove, ""},
		{"no bearish cross on second bar", pts(0, -1), pts(0, 0), model.StateBelow, ""},
		{"single bar", pts(1), pts(0), model.StateAbove, ""},
		{"undefined last", []model.Point{model.Defined(1), {}}, pts(0, 0), model.StateUndefined, ""},
		{"empty", nil, nil, model.StateUndefined, ""},
		{"length mismatch", pts(1, 2), pts(0), model.StateUndefined, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, cross := classifyMACD(tt.macd, tt.sig)
			if state != tt.wantState || cross != tt.wantCross {
				t.Errorf("got (%s, %q), want (%s, %q)", state, cross, tt.wantState, tt.wantCross)
			}
		})
	}
}

func TestClassifyBands(t *testing.T) {
	up, lo := model.Defined(110), model.Defined(90)
	tests := []struct {
		close float64
		upper model.Point
		want  model.SignalState
	}{
		{111, up, model.StateAbove},
		{110, up, model.StateInside},
		{89, up, model.StateBelow},
		{100, up, model.StateInside},
		{100, model.Undefined(), model.StateUndefined},
	}
	for _, tt := range tests {
		if got := classifyBands(tt.close, tt.upper, lo); got != tt.want {
			t.Errorf("classifyBands(%.0f) = %s, want %s", tt.close, got, tt.want)
		}
	}
}

func TestAlerts_CrossAndBands(t *testing.T) {
	sig := &model.TechnicalSignal{
		RSIState:  model.StateNeutral,
		Crossover: model.CrossBearish,
		BandState: model.StateBelow,
	}
	got := alerts(sig)
	if len(got) != 2 || got[0] != "MACD bearish crossover" || got[1] != "Close below lower band" {
		t.Errorf("alerts = %v", got)
	}
	sig.Alerts = got
	if sig.Alert() != "MACD bearish crossover; Close below lower band" {
		t.Errorf("Alert() = %q", sig.Alert())
	}
}
