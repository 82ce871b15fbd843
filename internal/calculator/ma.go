package calculator

import (
	"errors"

	"StockLens/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return mean(prices[len(prices)-period:]), nil
}

// SMASeries computes a trailing simple moving average at every position.
// Position i is defined only once a full window is available (i >= period-1).
func SMASeries(values []float64, period int) []model.Point {
	out := make([]model.Point, len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = model.Defined(mean(values[i-period+1 : i+1]))
	}
	return out
}

// Each window is summed from scratch so results never depend on running-sum drift.
func mean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}
