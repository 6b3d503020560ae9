package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarinvest/backend/internal/contracts"
)

func TestScoreValue(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "CHEAP", PERatio: fptr(5), PBRatio: fptr(0.8)},
		{Ticker: "DEAR", PERatio: fptr(40), PBRatio: fptr(4)},
	}

	scoreValue(cohort)

	require.NotNil(t, cohort[0].ValueScore)
	require.NotNil(t, cohort[1].ValueScore)

	// Lower multiples score higher.
	assert.Greater(t, *cohort[0].ValueScore, *cohort[1].ValueScore)

	// Best of two: both percentiles 1.0 -> (5+5)/2 = 5.
	assert.InDelta(t, 5.0, *cohort[0].ValueScore, 1e-9)
	// Worst of two: both percentiles 0.5 -> 2.5.
	assert.InDelta(t, 2.5, *cohort[1].ValueScore, 1e-9)
}

func TestScoreValue_MissingMetricLeavesNil(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "FULL", PERatio: fptr(10), PBRatio: fptr(1)},
		{Ticker: "NOPB", PERatio: fptr(8)},
	}

	scoreValue(cohort)

	assert.NotNil(t, cohort[0].ValueScore)
	assert.Nil(t, cohort[1].ValueScore, "snapshot missing P/B must not get a value score")
}

func TestScoreIncome(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "HI", DividendYield: fptr(8), PayoutRatio: fptr(50), DividendCAGR5Y: fptr(10)},
		{Ticker: "LO", DividendYield: fptr(2), PayoutRatio: fptr(90)},
	}

	scoreIncome(cohort)

	require.NotNil(t, cohort[0].IncomeScore)
	require.NotNil(t, cohort[1].IncomeScore)

	// HI: dy pct 1.0*4 + cagr pct 1.0*2 + payout<80 bonus 2 = 8.
	assert.InDelta(t, 8.0, *cohort[0].IncomeScore, 1e-9)
	// LO: dy pct 0.5*4 + no cagr + payout in [80,100) bonus 1 = 3.
	assert.InDelta(t, 3.0, *cohort[1].IncomeScore, 1e-9)
}

func TestScoreIncome_StaysInRange(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "A", DividendYield: fptr(12), PayoutRatio: fptr(40), DividendCAGR5Y: fptr(20)},
		{Ticker: "B", DividendYield: fptr(6), PayoutRatio: fptr(40), DividendCAGR5Y: fptr(8)},
		{Ticker: "C", DividendYield: fptr(3), PayoutRatio: fptr(40), DividendCAGR5Y: fptr(2)},
	}

	scoreIncome(cohort)

	for _, snap := range cohort {
		require.NotNil(t, snap.IncomeScore)
		assert.LessOrEqual(t, *snap.IncomeScore, 10.0)
		assert.GreaterOrEqual(t, *snap.IncomeScore, 0.0)
	}

	assert.Greater(t, *cohort[0].IncomeScore, *cohort[1].IncomeScore)
}

func TestScoreIncome_NoPayoutNoBonus(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "X", DividendYield: fptr(5)},
	}

	scoreIncome(cohort)

	require.NotNil(t, cohort[0].IncomeScore)
	// Only the dy component: pct 1.0 * 4.
	assert.InDelta(t, 4.0, *cohort[0].IncomeScore, 1e-9)
}

func TestScoreQuality(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "GOOD", ROE: fptr(20), NetMargin: fptr(15), DebtToEBITDA: fptr(1)},
		{Ticker: "WEAK", ROE: fptr(5), NetMargin: fptr(2), DebtToEBITDA: fptr(3.5)},
	}

	scoreQuality(cohort)

	require.NotNil(t, cohort[0].QualityScore)
	require.NotNil(t, cohort[1].QualityScore)

	// GOOD dominates on every component: 4 + 3 + 3 = 10 vs 2 + 1.5 + 1.5 = 5.
	assert.InDelta(t, 10.0, *cohort[0].QualityScore, 1e-9)
	assert.InDelta(t, 5.0, *cohort[1].QualityScore, 1e-9)
}

func TestScoreQuality_RequiresAllThreeMetrics(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "NODEBT", ROE: fptr(20), NetMargin: fptr(15)},
	}

	scoreQuality(cohort)

	assert.Nil(t, cohort[0].QualityScore)
}

func TestAxisScores_AlwaysInRange(t *testing.T) {
	cohort := []*contracts.StockSnapshot{
		{Ticker: "A", PERatio: fptr(3), PBRatio: fptr(0.5), DividendYield: fptr(11), PayoutRatio: fptr(30), DebtToEBITDA: fptr(0.2), ROE: fptr(35), NetMargin: fptr(25), DividendCAGR5Y: fptr(18)},
		{Ticker: "B", PERatio: fptr(12), PBRatio: fptr(1.5), DividendYield: fptr(6), PayoutRatio: fptr(70), DebtToEBITDA: fptr(2), ROE: fptr(15), NetMargin: fptr(10), DividendCAGR5Y: fptr(5)},
		{Ticker: "C", PERatio: fptr(45), PBRatio: fptr(4.5), DividendYield: fptr(1), PayoutRatio: fptr(95), DebtToEBITDA: fptr(3.9), ROE: fptr(2), NetMargin: fptr(1)},
	}

	scoreValue(cohort)
	scoreIncome(cohort)
	scoreQuality(cohort)

	for _, snap := range cohort {
		for name, score := range map[string]*float64{
			"value":   snap.ValueScore,
			"income":  snap.IncomeScore,
			"quality": snap.QualityScore,
		} {
			require.NotNil(t, score, "%s score for %s", name, snap.Ticker)
			assert.GreaterOrEqual(t, *score, 0.0, "%s score for %s", name, snap.Ticker)
			assert.LessOrEqual(t, *score, 10.0, "%s score for %s", name, snap.Ticker)
		}
	}
}
