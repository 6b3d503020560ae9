package contracts

import (
	"fmt"
	"time"
)

// Indicator names a snapshot field a filter rule can test.
type Indicator string

const (
	IndicatorPERatio        Indicator = "pe_ratio"
	IndicatorPBRatio        Indicator = "pb_ratio"
	IndicatorDividendYield  Indicator = "dividend_yield"
	IndicatorPayoutRatio    Indicator = "payout_ratio"
	IndicatorDebtToEBITDA   Indicator = "debt_to_ebitda"
	IndicatorROE            Indicator = "roe"
	IndicatorNetMargin      Indicator = "net_margin"
	IndicatorDividendCAGR5Y Indicator = "dividend_cagr_5y"
	IndicatorMarketCap      Indicator = "market_cap"
	IndicatorCurrentPrice   Indicator = "current_price"
	IndicatorSector         Indicator = "sector"
	IndicatorSubsector      Indicator = "subsector"
)

// Valid reports whether the indicator is known.
func (i Indicator) Valid() bool {
	switch i {
	case IndicatorPERatio, IndicatorPBRatio, IndicatorDividendYield,
		IndicatorPayoutRatio, IndicatorDebtToEBITDA, IndicatorROE,
		IndicatorNetMargin, IndicatorDividendCAGR5Y, IndicatorMarketCap,
		IndicatorCurrentPrice, IndicatorSector, IndicatorSubsector:
		return true
	}
	return false
}

// IsNumeric reports whether the indicator carries a numeric value.
func (i Indicator) IsNumeric() bool {
	switch i {
	case IndicatorSector, IndicatorSubsector:
		return false
	}
	return i.Valid()
}

// Operator is the closed set of comparison operators a filter rule can use.
// Dispatch over operators must stay exhaustive; adding an operator means
// touching every switch that handles them.
type Operator string

const (
	OpGreaterThan  Operator = ">"
	OpLessThan     Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEquals       Operator = "="
	OpIn           Operator = "in"
	OpNotIn        Operator = "not_in"
)

// Valid reports whether the operator is known.
func (o Operator) Valid() bool {
	switch o {
	case OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual,
		OpEquals, OpIn, OpNotIn:
		return true
	}
	return false
}

// FilterRule is one predicate inside a strategy. Numeric operators compare
// against ValueNumeric; in/not_in test membership in the comma-separated
// ValueString set. No coercion happens between the two operand kinds.
type FilterRule struct {
	ID           int64     `json:"id"`
	Indicator    Indicator `json:"indicator"`
	Operator     Operator  `json:"operator"`
	ValueNumeric *float64  `json:"value_numeric,omitempty"`
	ValueString  string    `json:"value_string,omitempty"`
}

// Validate reports structural problems with a rule. A rule with neither
// operand set is a contract violation and the only condition the engine
// surfaces as a hard error.
func (r FilterRule) Validate() error {
	if !r.Indicator.Valid() {
		return fmt.Errorf("unknown indicator %q", r.Indicator)
	}
	if !r.Operator.Valid() {
		return fmt.Errorf("unknown operator %q", r.Operator)
	}
	if r.ValueNumeric == nil && r.ValueString == "" {
		return fmt.Errorf("rule on %q has neither numeric nor string operand", r.Indicator)
	}
	return nil
}

// Strategy is a user-authored rule set evaluated as a logical AND.
// Active is a soft-delete flag; NotificationsEnabled opts the strategy
// into match alerting.
type Strategy struct {
	ID                   int64        `json:"id"`
	UserID               int64        `json:"user_id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description,omitempty"`
	Rules                []FilterRule `json:"rules"`
	Active               bool         `json:"active"`
	NotificationsEnabled bool         `json:"notifications_enabled"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Validate checks the strategy and all of its rules.
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("strategy name must not be empty")
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("strategy %q has no rules", s.Name)
	}
	for i, r := range s.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// User is the slice of the account record the engine needs: identity and
// scoring profile. Credentials and session handling live elsewhere.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Archetype Archetype `json:"archetype,omitempty"`
}
