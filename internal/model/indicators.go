package model

// Canonical derived column names.
const (
	ColSMA20      = "SMA_20"
	ColSMA50      = "SMA_50"
	ColRSI        = "RSI"
	ColMACD       = "MACD"
	ColSignalLine = "Signal_Line"
	ColBBMiddle   = "BB_middle"
	ColBBUpper    = "BB_upper"
	ColBBLower    = "BB_lower"
)

// IndicatorTable is an OHLCV series extended with derived columns.
// Every column has exactly len(Bars) points.
type IndicatorTable struct {
	Bars       []OHLCV `json:"bars"`
	SMA20      []Point `json:"sma_20"`
	SMA50      []Point `json:"sma_50"`
	RSI        []Point `json:"rsi"`
	MACD       []Point `json:"macd"`
	SignalLine []Point `json:"signal_line"`
	BBMiddle   []Point `json:"bb_middle"`
	BBUpper    []Point `json:"bb_upper"`
	BBLower    []Point `json:"bb_lower"`
}

// Columns lists the derived column names in canonical order.
func (t *IndicatorTable) Columns() []string {
	return []string{ColSMA20, ColSMA50, ColRSI, ColMACD, ColSignalLine, ColBBMiddle, ColBBUpper, ColBBLower}
}

// Column returns a derived column by name.
func (t *IndicatorTable) Column(name string) ([]Point, bool) {
	switch name {
	case ColSMA20:
		return t.SMA20, true
	case ColSMA50:
		return t.SMA50, true
	case ColRSI:
		return t.RSI, true
	case ColMACD:
		return t.MACD, true
	case ColSignalLine:
		return t.SignalLine, true
	case ColBBMiddle:
		return t.BBMiddle, true
	case ColBBUpper:
		return t.BBUpper, true
	case ColBBLower:
		return t.BBLower, true
	}
	return nil, false
}

// Len returns the number of sessions.
func (t *IndicatorTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Bars)
}
