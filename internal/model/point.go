package model

import (
	"math"
	"strconv"
)

// Point is a derived value that may be undefined. The zero Point is undefined.
type Point struct {
	Value float64
	Valid bool
}

// Defined wraps v as a valid Point. NaN and Inf are treated as undefined.
func Defined(v float64) Point {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Point{}
	}
	return Point{Value: v, Valid: true}
}

// Undefined returns the undefined marker.
func Undefined() Point { return Point{} }

// Float returns the value, or NaN when undefined.
func (p Point) Float() float64 {
	if !p.Valid {
		return math.NaN()
	}
	return p.Value
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, p.Value, 'f', -1, 64), nil
}

func (p *Point) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Point{}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*p = Defined(v)
	return nil
}

// Last returns the final point of a column, undefined if empty.
func Last(col []Point) Point {
	if len(col) == 0 {
		return Point{}
	}
	return col[len(col)-1]
}
