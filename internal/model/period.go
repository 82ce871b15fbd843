package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRange is returned for unknown period tokens or bad date pairs.
var ErrInvalidRange = errors.New("invalid range")

// Period is a named lookback token understood by the provider.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	Period10y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"

	// PeriodCustom marks a Range built from an explicit date pair.
	PeriodCustom Period = "custom"
)

// Periods is the selectable set, in display order.
var Periods = []Period{Period1d, Period5d, Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y, PeriodMax}

var periodLabels = map[Period]string{
	Period1d:     "Last 24 Hours",
	Period5d:     "Last 5 Days",
	Period1mo:    "Last Month",
	Period3mo:    "Last 3 Months",
	Period6mo:    "Last 6 Months",
	Period1y:     "Last Year",
	Period2y:     "Last 2 Years",
	Period5y:     "Last 5 Years",
	Period10y:    "Last 10 Years",
	PeriodYTD:    "Year to Date",
	PeriodMax:    "Maximum Available",
	PeriodCustom: "Custom Range",
}

// Label is the human description of the period.
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// Valid reports whether p is a known named period.
func (p Period) Valid() bool {
	_, ok := periodLabels[p]
	return ok && p != PeriodCustom
}

// Range selects the history window: either a named period or [Start, End).
type Range struct {
	Period Period    `json:"period"`
	Start  time.Time `json:"start,omitempty"`
	End    time.Time `json:"end,omitempty"`
}

// Custom reports whether the range is an explicit date pair.
func (r Range) Custom() bool { return r.Period == PeriodCustom }

func (r Range) String() string {
	if r.Custom() {
		return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
	}
	return string(r.Period)
}

// Label describes the range for headings.
func (r Range) Label() string {
	if r.Custom() {
		return r.Period.Label() + " " + r.String()
	}
	return r.Period.Label()
}

// DateLayout is the format for custom range bounds.
const DateLayout = "2006-01-02"

// NamedRange builds a Range from a period token.
func NamedRange(token string) (Range, error) {
	p := Period(strings.ToLower(strings.TrimSpace(token)))
	if !p.Valid() {
		return Range{}, fmt.Errorf("%w: unknown period %q", ErrInvalidRange, token)
	}
	return Range{Period: p}, nil
}

// CustomRange builds a Range from a start/end date pair. End is exclusive.
func CustomRange(start, end time.Time) (Range, error) {
	if start.IsZero() || end.IsZero() {
		return Range{}, fmt.Errorf("%w: start and end are required", ErrInvalidRange)
	}
	if !start.Before(end) {
		return Range{}, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRange,
			start.Format(DateLayout), end.Format(DateLayout))
	}
	return Range{Period: PeriodCustom, Start: start, End: end}, nil
}

// ParseRange accepts either a period token, or "custom" with start and end dates
// in DateLayout. A non-empty start/end pair wins over the token.
func ParseRange(token, start, end string) (Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start != "" || end != "" || strings.EqualFold(token, string(PeriodCustom)) {
		s, err := time.Parse(DateLayout, start)
		if err != nil {
			return Range{}, fmt.Errorf("%w: start date %q", ErrInvalidRange, start)
		}
		e, err := time.Parse(DateLayout, end)
		if err != nil {
			return Range{}, fmt.Errorf("%w: end date %q", ErrInvalidRange, end)
		}
		return CustomRange(s, e)
	}
	return NamedRange(token)
}
