// Package dashboard turns analysis results into display strings and view
// models shared by the web and terminal front ends.
package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockLens/internal/model"
)

// NA is shown for any value that is absent, zero or not finite.
const NA = "N/A"

// FetchErrorMessage is the user-facing text for any provider failure.
const FetchErrorMessage = "Error loading stock data. Please try again later."

// FormatNumber abbreviates large values with B/M/K suffixes and two decimals.
// Zero, NaN and Inf have no meaningful display and return NA. Negative values
// are not abbreviated.
func FormatNumber(v float64) string {
	switch {
	case v == 0 || math.IsNaN(v) || math.IsInf(v, 0):
		return NA
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatOptional is FormatNumber for a possibly absent field.
func FormatOptional(v *float64) string {
	if v == nil {
		return NA
	}
	return FormatNumber(*v)
}

// FormatMoney prefixes the currency symbol unless the value is NA.
func FormatMoney(currency string, v *float64) string {
	s := FormatOptional(v)
	if s == NA {
		return s
	}
	return currency + s
}

// FormatRatioPercent renders a ratio (0.25) as a percentage ("25.00%").
func FormatRatioPercent(v *float64) string {
	if v == nil {
		return NA
	}
	s := FormatNumber(*v * 100)
	if s == NA {
		return s
	}
	return s + "%"
}

// FormatChange renders a percent change and the CSS class for its sign.
func FormatChange(pct *float64) (text, class string) {
	if pct == nil || math.IsNaN(*pct) || math.IsInf(*pct, 0) {
		return NA, ""
	}
	if *pct >= 0 {
		return fmt.Sprintf("%.2f%%", *pct), "up"
	}
	return fmt.Sprintf("%.2f%%", *pct), "down"
}

// FormatPoint renders an indicator value with two decimals, NA if undefined.
func FormatPoint(p model.Point) string {
	if !p.Valid {
		return NA
	}
	return fmt.Sprintf("%.2f", p.Value)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NA
	}
	return t.Format(model.DateLayout)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n *int64) string {
	if n == nil || *n == 0 {
		return NA
	}
	return humanize.Comma(*n)
}

// FormatText returns s, or NA when blank.
func FormatText(s string) string {
	if strings.TrimSpace(s) == "" {
		return NA
	}
	return s
}

// CurrencySymbol returns ₹ for Indian listings and $ otherwise.
func CurrencySymbol(symbol string) string {
	if model.IsIndianListing(symbol) {
		return "₹"
	}
	return "$"
}

// DisplaySymbol drops the NSE suffix for menus and headings.
func DisplaySymbol(symbol string) string {
	return strings.TrimSuffix(symbol, ".NS")
}
