package calculator

import (
	"math"

	"StockLens/internal/model"
)

// Bollinger band parameters.
const (
	BollingerPeriod = 20
	BollingerWidth  = 2.0
)

// BollingerSeries returns the middle (SMA), upper and lower bands. Band width
// uses the sample standard deviation (n-1) of the window.
func BollingerSeries(closes []float64, period int, width float64) (middle, upper, lower []model.Point) {
	middle = SMASeries(closes, period)
	upper = make([]model.Point, len(closes))
	lower = make([]model.Point, len(closes))
	for i, m := range middle {
		if !m.Valid {
			continue
		}
		sd := sampleStdDev(closes[i-period+1:i+1], m.Value)
		if math.IsNaN(sd) {
			continue
		}
		upper[i] = model.Defined(m.Value + width*sd)
		lower[i] = model.Defined(m.Value - width*sd)
	}
	return middle, upper, lower
}

// sampleStdDev is NaN for windows shorter than two values.
func sampleStdDev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return math.NaN()
	}
	ss := 0.0
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}
