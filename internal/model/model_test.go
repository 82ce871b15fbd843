package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointJSON(t *testing.T) {
	col := []Point{Undefined(), Defined(1.5), Defined(math.NaN())}
	data, err := json.Marshal(col)
	require.NoError(t, err)
	assert.Equal(t, `[null,1.5,null]`, string(data))

	var back []Point
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Point{{}, {Value: 1.5, Valid: true}, {}}, back)
}

func TestPointFloat(t *testing.T) {
	assert.True(t, math.IsNaN(Undefined().Float()))
	assert.Equal(t, 2.0, Defined(2).Float())
	assert.False(t, Last(nil).Valid)
	assert.Equal(t, 3.0, Last([]Point{Defined(1), Defined(3)}).Value)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		start, end string
		want       Range
		wantErr    bool
	}{
		{name: "named", token: "6mo", want: Range{Period: Period6mo}},
		{name: "case and space", token: " 1Y ", want: Range{Period: Period1y}},
		{name: "max", token: "max", want: Range{Period: PeriodMax}},
		{name: "unknown", token: "7w", wantErr: true},
		{name: "custom token alone", token: "custom", wantErr: true},
		{
			name:  "custom",
			token: "custom", start: "2024-01-01", end: "2024-02-01",
			want: Range{
				Period: PeriodCustom,
				Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				End:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{name: "dates override token", token: "1d", start: "2024-01-01", end: "2024-01-02",
			want: Range{
				Period: PeriodCustom,
				Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				End:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			}},
		{name: "start equals end", start: "2024-01-01", end: "2024-01-01", wantErr: true},
		{name: "start after end", start: "2024-03-01", end: "2024-01-01", wantErr: true},
		{name: "bad date", start: "01/01/2024", end: "2024-01-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.token, tt.start, tt.end)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodLabels(t *testing.T) {
	for _, p := range Periods {
		assert.True(t, p.Valid(), p)
		assert.NotEqual(t, string(p), p.Label(), "period %s has no label", p)
	}
	assert.False(t, PeriodCustom.Valid())
	assert.Equal(t, "Last 6 Months", Period6mo.Label())

	r, err := CustomRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Custom Range 2024-01-01..2024-02-01", r.Label())
	assert.Equal(t, "Last Year", Range{Period: Period1y}.Label())
}

func TestIndicatorTableColumns(t *testing.T) {
	tbl := &IndicatorTable{RSI: []Point{Defined(50)}}
	assert.Len(t, tbl.Columns(), 8)
	for _, name := range tbl.Columns() {
		_, ok := tbl.Column(name)
		assert.True(t, ok, name)
	}
	col, _ := tbl.Column(ColRSI)
	assert.Equal(t, 50.0, col[0].Value)
	_, ok := tbl.Column("Close")
	assert.False(t, ok)

	var nilTable *IndicatorTable
	assert.Equal(t, 0, nilTable.Len())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "", (*StockMetadata)(nil).DisplayName())
	assert.Equal(t, "AAPL", (&StockMetadata{Symbol: "AAPL"}).DisplayName())
	assert.Equal(t, "Apple", (&StockMetadata{Symbol: "AAPL", ShortName: "Apple"}).DisplayName())
	assert.Equal(t, "Apple Inc.", (&StockMetadata{Symbol: "AAPL", ShortName: "Apple", LongName: "Apple Inc."}).DisplayName())
}
