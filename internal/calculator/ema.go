package calculator

import "StockLens/internal/model"

// MACD spans.
const (
	MACDFastSpan   = 12
	MACDSlowSpan   = 26
	MACDSignalSpan = 9
)

// EMASeries computes a recursive exponential moving average with
// alpha = 2/(span+1), seeded with the first defined input. Undefined inputs
// before the seed stay undefined; later undefined inputs carry the previous
// average forward.
func EMASeries(values []model.Point, span int) []model.Point {
	out := make([]model.Point, len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	var ema float64
	seeded := false
	for i, v := range values {
		switch {
		case !v.Valid && !seeded:
			continue
		case !v.Valid:
			// carry forward
		case !seeded:
			ema = v.Value
			seeded = true
		default:
			ema = (1-alpha)*ema + alpha*v.Value
		}
		out[i] = model.Defined(ema)
	}
	return out
}

// MACDSeries returns the MACD line (fast EMA - slow EMA of closes) and its signal line.
func MACDSeries(closes []float64) (macd, signal []model.Point) {
	pts := points(closes)
	fast := EMASeries(pts, MACDFastSpan)
	slow := EMASeries(pts, MACDSlowSpan)
	macd = make([]model.Point, len(closes))
	for i := range closes {
		if fast[i].Valid && slow[i].Valid {
			macd[i] = model.Defined(fast[i].Value - slow[i].Value)
		}
	}
	return macd, EMASeries(macd, MACDSignalSpan)
}

func points(values []float64) []model.Point {
	out := make([]model.Point, len(values))
	for i, v := range values {
		out[i] = model.Defined(v)
	}
	return out
}
