package model

import "time"

// StockMetadata holds company and financial fields as reported by the provider.
// Nil numbers and empty strings mean the provider did not supply the field.
type StockMetadata struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"short_name,omitempty"`
	LongName  string `json:"long_name,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Exchange  string `json:"exchange,omitempty"`

	CurrentPrice        *float64 `json:"current_price,omitempty"`
	ChangePercent       *float64 `json:"change_percent,omitempty"` // percent, e.g. 1.25 for +1.25%
	RegularMarketOpen   *float64 `json:"regular_market_open,omitempty"`
	Volume              *float64 `json:"volume,omitempty"`
	MarketCap           *float64 `json:"market_cap,omitempty"`
	TrailingPE          *float64 `json:"trailing_pe,omitempty"`
	TrailingEPS         *float64 `json:"trailing_eps,omitempty"`
	Beta                *float64 `json:"beta,omitempty"`
	FiftyTwoWeekHigh    *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow     *float64 `json:"fifty_two_week_low,omitempty"`
	DividendYield       *float64 `json:"dividend_yield,omitempty"` // ratio
	TotalRevenue        *float64 `json:"total_revenue,omitempty"`
	ProfitMargins       *float64 `json:"profit_margins,omitempty"`
	OperatingMargins    *float64 `json:"operating_margins,omitempty"`
	ReturnOnEquity      *float64 `json:"return_on_equity,omitempty"`
	ReturnOnAssets      *float64 `json:"return_on_assets,omitempty"`
	DebtToEquity        *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio        *float64 `json:"current_ratio,omitempty"`
	FullTimeEmployees   *int64   `json:"full_time_employees,omitempty"`
	SustainabilityScore *float64 `json:"sustainability_score,omitempty"`
	EnvironmentScore    *float64 `json:"environment_score,omitempty"`
	SocialScore         *float64 `json:"social_score,omitempty"`
	GovernanceScore     *float64 `json:"governance_score,omitempty"`

	Sector          string `json:"sector,omitempty"`
	Industry        string `json:"industry,omitempty"`
	Website         string `json:"website,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	BusinessSummary string `json:"business_summary,omitempty"`

	EarningsDate      *time.Time `json:"earnings_date,omitempty"`
	ExDividendDate    *time.Time `json:"ex_dividend_date,omitempty"`
	LastFiscalYearEnd *time.Time `json:"last_fiscal_year_end,omitempty"`
}

// DisplayName prefers the long name, then the short name, then the symbol.
func (m *StockMetadata) DisplayName() string {
	switch {
	case m == nil:
		return ""
	case m.LongName != "":
		return m.LongName
	case m.ShortName != "":
		return m.ShortName
	}
	return m.Symbol
}

// NewsItem is a single headline.
type NewsItem struct {
	Title     string    `json:"title"`
	Published time.Time `json:"published"`
	Link      string    `json:"link"`
	Publisher string    `json:"publisher,omitempty"`
}
