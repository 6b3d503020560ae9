package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

func fptr(v float64) *float64 { return &v }

func testCohort() []*contracts.StockSnapshot {
	return []*contracts.StockSnapshot{
		{
			Ticker:        "AAAA3",
			Sector:        "Utilities",
			Subsector:     "Power",
			DividendYield: fptr(8),
			PERatio:       fptr(10),
			ROE:           fptr(20),
		},
		{
			Ticker:        "BBBB4",
			Sector:        "Banks",
			DividendYield: fptr(2),
			PERatio:       fptr(40),
			ROE:           fptr(5),
		},
		{
			Ticker:  "CCCC3",
			Sector:  "Retail",
			PERatio: fptr(15),
			// no dividend yield at all
		},
	}
}

func strategyWith(rules ...contracts.FilterRule) *contracts.Strategy {
	return &contracts.Strategy{
		ID:     1,
		UserID: 1,
		Name:   "test strategy",
		Rules:  rules,
		Active: true,
	}
}

func TestEvaluator_NumericOperators(t *testing.T) {
	e := NewEvaluator(logger.NewNop())
	ctx := context.Background()
	cohort := testCohort()

	tests := []struct {
		name string
		rule contracts.FilterRule
		want []string
	}{
		{
			name: "greater or equal",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterEqual, ValueNumeric: fptr(6)},
			want: []string{"AAAA3"},
		},
		{
			name: "less than",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpLessThan, ValueNumeric: fptr(20)},
			want: []string{"AAAA3", "CCCC3"},
		},
		{
			name: "greater than",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorROE, Operator: contracts.OpGreaterThan, ValueNumeric: fptr(10)},
			want: []string{"AAAA3"},
		},
		{
			name: "less or equal boundary",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpLessEqual, ValueNumeric: fptr(15)},
			want: []string{"AAAA3", "CCCC3"},
		},
		{
			name: "numeric equals",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpEquals, ValueNumeric: fptr(40)},
			want: []string{"BBBB4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(ctx, cohort, strategyWith(tt.rule))

			tickers := make([]string, len(got))
			for i, s := range got {
				tickers[i] = s.Ticker
			}
			assert.Equal(t, tt.want, tickers)
		})
	}
}

func TestEvaluator_StringOperators(t *testing.T) {
	e := NewEvaluator(logger.NewNop())
	ctx := context.Background()
	cohort := testCohort()

	tests := []struct {
		name string
		rule contracts.FilterRule
		want []string
	}{
		{
			name: "string equals",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorSector, Operator: contracts.OpEquals, ValueString: "Banks"},
			want: []string{"BBBB4"},
		},
		{
			name: "sector in set",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorSector, Operator: contracts.OpIn, ValueString: "Utilities,Banks"},
			want: []string{"AAAA3", "BBBB4"},
		},
		{
			name: "sector not in set",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorSector, Operator: contracts.OpNotIn, ValueString: "Banks"},
			want: []string{"AAAA3", "CCCC3"},
		},
		{
			name: "subsector membership",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorSubsector, Operator: contracts.OpIn, ValueString: "Power,Water"},
			want: []string{"AAAA3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(ctx, cohort, strategyWith(tt.rule))

			tickers := make([]string, len(got))
			for i, s := range got {
				tickers[i] = s.Ticker
			}
			assert.Equal(t, tt.want, tickers)
		})
	}
}

func TestEvaluator_AndSemantics(t *testing.T) {
	e := NewEvaluator(logger.NewNop())
	ctx := context.Background()

	// Both rules individually match AAAA3; only together they exclude the rest.
	strat := strategyWith(
		contracts.FilterRule{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterEqual, ValueNumeric: fptr(6)},
		contracts.FilterRule{Indicator: contracts.IndicatorSector, Operator: contracts.OpEquals, ValueString: "Utilities"},
	)

	got := e.Apply(ctx, testCohort(), strat)
	require.Len(t, got, 1)
	assert.Equal(t, "AAAA3", got[0].Ticker)
}

func TestEvaluator_Monotonicity(t *testing.T) {
	// Removing a rule can only grow (or keep) the matching set.
	e := NewEvaluator(logger.NewNop())
	ctx := context.Background()
	cohort := testCohort()

	rules := []contracts.FilterRule{
		{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterEqual, ValueNumeric: fptr(2)},
		{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpLessThan, ValueNumeric: fptr(50)},
		{Indicator: contracts.IndicatorSector, Operator: contracts.OpNotIn, ValueString: "Retail"},
	}

	full := len(e.Apply(ctx, cohort, strategyWith(rules...)))

	for drop := range rules {
		reduced := make([]contracts.FilterRule, 0, len(rules)-1)
		for i, r := range rules {
			if i != drop {
				reduced = append(reduced, r)
			}
		}

		got := len(e.Apply(ctx, cohort, strategyWith(reduced...)))
		assert.GreaterOrEqual(t, got, full, "dropping rule %d must not shrink the match set", drop)
	}
}

func TestEvaluator_FailsClosed(t *testing.T) {
	e := NewEvaluator(logger.NewNop())
	ctx := context.Background()
	cohort := testCohort()

	tests := []struct {
		name string
		rule contracts.FilterRule
	}{
		{
			name: "missing metric fails the rule",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorNetMargin, Operator: contracts.OpGreaterThan, ValueNumeric: fptr(0)},
		},
		{
			name: "unknown indicator",
			rule: contracts.FilterRule{Indicator: "mystery_metric", Operator: contracts.OpGreaterThan, ValueNumeric: fptr(0)},
		},
		{
			name: "unknown operator",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorPERatio, Operator: "between", ValueNumeric: fptr(0)},
		},
		{
			name: "numeric operator without numeric operand",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpGreaterThan, ValueString: "10"},
		},
		{
			name: "string operator on numeric indicator",
			rule: contracts.FilterRule{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpIn, ValueString: "10,20"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(ctx, cohort, strategyWith(tt.rule))
			assert.Empty(t, got, "bad rules must evaluate to non-match, not panic")
		})
	}
}

func TestEvaluator_MissingMetricExcludesOnlyThatSnapshot(t *testing.T) {
	e := NewEvaluator(logger.NewNop())
	ctx := context.Background()

	// CCCC3 has no dividend yield, so any dividend rule excludes it even
	// with a threshold every present value passes.
	strat := strategyWith(
		contracts.FilterRule{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterThan, ValueNumeric: fptr(0)},
	)

	got := e.Apply(ctx, testCohort(), strat)
	require.Len(t, got, 2)
	assert.Equal(t, "AAAA3", got[0].Ticker)
	assert.Equal(t, "BBBB4", got[1].Ticker)
}
