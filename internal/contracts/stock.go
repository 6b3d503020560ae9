package contracts

import "time"

// StockSnapshot is the per-cycle fundamental data record for one ticker.
// Raw fundamentals are nullable because upstream coverage is imperfect;
// a missing metric is an expected condition, not an error. Sub-scores and
// the final score are recomputed from scratch every scoring cycle.
type StockSnapshot struct {
	ID        int64  `json:"id"`
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	Sector    string `json:"sector,omitempty"`
	Subsector string `json:"subsector,omitempty"`

	// Market data
	CurrentPrice *float64 `json:"current_price,omitempty"`
	MarketCap    *float64 `json:"market_cap,omitempty"`

	// Core fundamentals
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"` // percent
	PayoutRatio   *float64 `json:"payout_ratio,omitempty"`   // percent
	DebtToEBITDA  *float64 `json:"debt_to_ebitda,omitempty"`
	ROE           *float64 `json:"roe,omitempty"`        // percent
	NetMargin     *float64 `json:"net_margin,omitempty"` // percent

	// Derived metrics
	DividendCAGR5Y *float64 `json:"dividend_cagr_5y,omitempty"`
	BazinPrice     *float64 `json:"bazin_price,omitempty"`   // ceiling price at 6% yield
	GrahamMargin   *float64 `json:"graham_margin,omitempty"` // safety margin vs fair value

	// Scores, all in [0,10] once set. FinalScore is rounded to 2 decimals.
	ValueScore   *float64 `json:"value_score,omitempty"`
	IncomeScore  *float64 `json:"income_score,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	FinalScore   *float64 `json:"final_score,omitempty"`

	// IsQualified reports whether the snapshot passed the gross filter
	// in the most recent cycle.
	IsQualified bool `json:"is_qualified"`

	DataSource  string    `json:"data_source,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// HasCoreFundamentals reports whether all seven metrics required by the
// gross filter are present.
func (s *StockSnapshot) HasCoreFundamentals() bool {
	return s.PERatio != nil &&
		s.PBRatio != nil &&
		s.DividendYield != nil &&
		s.PayoutRatio != nil &&
		s.DebtToEBITDA != nil &&
		s.ROE != nil &&
		s.NetMargin != nil
}

// HasAllScores reports whether every axis sub-score has been computed.
func (s *StockSnapshot) HasAllScores() bool {
	return s.ValueScore != nil && s.IncomeScore != nil && s.QualityScore != nil
}

// NumericIndicator returns the numeric value behind a filter indicator.
// The boolean is false when the metric is absent on this snapshot or the
// indicator is not numeric.
func (s *StockSnapshot) NumericIndicator(ind Indicator) (float64, bool) {
	var v *float64
	switch ind {
	case IndicatorPERatio:
		v = s.PERatio
	case IndicatorPBRatio:
		v = s.PBRatio
	case IndicatorDividendYield:
		v = s.DividendYield
	case IndicatorPayoutRatio:
		v = s.PayoutRatio
	case IndicatorDebtToEBITDA:
		v = s.DebtToEBITDA
	case IndicatorROE:
		v = s.ROE
	case IndicatorNetMargin:
		v = s.NetMargin
	case IndicatorDividendCAGR5Y:
		v = s.DividendCAGR5Y
	case IndicatorMarketCap:
		v = s.MarketCap
	case IndicatorCurrentPrice:
		v = s.CurrentPrice
	default:
		return 0, false
	}

	if v == nil {
		return 0, false
	}
	return *v, true
}

// StringIndicator returns the string value behind a filter indicator.
// The boolean is false when the field is empty or the indicator is not
// string-valued.
func (s *StockSnapshot) StringIndicator(ind Indicator) (string, bool) {
	switch ind {
	case IndicatorSector:
		return s.Sector, s.Sector != ""
	case IndicatorSubsector:
		return s.Subsector, s.Subsector != ""
	default:
		return "", false
	}
}
