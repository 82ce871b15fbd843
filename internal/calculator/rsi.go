package calculator

import (
	"errors"

	"StockLens/internal/model"
)

// RSIPeriod is the default RSI lookback.
const RSIPeriod = 14

// RSISeries computes RSI at every position using simple rolling means of the
// positive and negative close-to-close deltas. Position i is defined once
// period deltas exist (i >= period). When the average loss is zero the RSI is
// 100, so every defined value lies in [0, 100].
func RSISeries(closes []float64, period int) []model.Point {
	out := make([]model.Point, len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change
			}
		}
		out[i] = model.Defined(rsiFromAverages(gain/float64(period), loss/float64(period)))
	}
	return out
}

// CalculateRSI returns the latest RSI over the given period.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, errors.New("not enough data for RSI calculation")
	}
	last := model.Last(RSISeries(model.Closes(bars[len(bars)-period-1:]), period))
	return last.Value, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	switch {
	case rsi < 0:
		return 0
	case rsi > 100:
		return 100
	}
	return rsi
}
