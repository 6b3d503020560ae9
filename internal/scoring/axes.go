package scoring

import (
	"math"

	"github.com/radarinvest/backend/internal/contracts"
)

// Axis scorers turn cohort-relative percentiles into 0-10 sub-scores.
// Percentiles are computed once per cohort per metric over the sub-cohort
// that actually has the metric and mapped back by position, so snapshots
// with gaps never shift another snapshot's rank.

// metricPercentiles computes percentiles for the snapshots where get
// returns a value. The result maps cohort index -> percentile.
func metricPercentiles(cohort []*contracts.StockSnapshot, get func(*contracts.StockSnapshot) *float64, lowerIsBetter bool) map[int]float64 {
	indexes := make([]int, 0, len(cohort))
	values := make([]float64, 0, len(cohort))

	for i, snap := range cohort {
		if v := get(snap); v != nil {
			indexes = append(indexes, i)
			values = append(values, *v)
		}
	}

	pcts := Percentiles(values, lowerIsBetter)

	out := make(map[int]float64, len(indexes))
	for j, i := range indexes {
		out[i] = pcts[j]
	}
	return out
}

// scoreValue assigns the value axis: the mean of two 0-5 components built
// from P/E and P/B percentiles, both lower-is-better. Snapshots missing
// either metric keep a nil value score.
func scoreValue(cohort []*contracts.StockSnapshot) {
	pePcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.PERatio }, true)
	pbPcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.PBRatio }, true)

	for i, snap := range cohort {
		pePct, okPE := pePcts[i]
		pbPct, okPB := pbPcts[i]
		if !okPE || !okPB {
			continue
		}

		score := (pePct*5 + pbPct*5) / 2
		snap.ValueScore = &score
	}
}

// scoreIncome assigns the income axis: dividend-yield percentile scaled to
// 0-4, a 0-2 CAGR bonus when five-year dividend growth is known, and a
// payout consistency bonus (+2 below 80%, +1 below 100%). Clamped to 10.
func scoreIncome(cohort []*contracts.StockSnapshot) {
	dyPcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.DividendYield }, false)
	cagrPcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.DividendCAGR5Y }, false)

	for i, snap := range cohort {
		dyPct, ok := dyPcts[i]
		if !ok {
			continue
		}

		score := dyPct * 4

		if cagrPct, ok := cagrPcts[i]; ok {
			score += cagrPct * 2
		}

		if snap.PayoutRatio != nil {
			switch {
			case *snap.PayoutRatio < 80:
				score += 2
			case *snap.PayoutRatio < 100:
				score += 1
			}
		}

		score = math.Min(10, score)
		snap.IncomeScore = &score
	}
}

// scoreQuality assigns the quality axis: ROE percentile scaled to 0-4 plus
// net-margin and debt/EBITDA percentiles scaled to 0-3 each (debt
// lower-is-better). Requires all three metrics; clamped to 10.
func scoreQuality(cohort []*contracts.StockSnapshot) {
	roePcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.ROE }, false)
	marginPcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.NetMargin }, false)
	debtPcts := metricPercentiles(cohort, func(s *contracts.StockSnapshot) *float64 { return s.DebtToEBITDA }, true)

	for i, snap := range cohort {
		roePct, okROE := roePcts[i]
		marginPct, okMargin := marginPcts[i]
		debtPct, okDebt := debtPcts[i]
		if !okROE || !okMargin || !okDebt {
			continue
		}

		score := math.Min(10, roePct*4+marginPct*3+debtPct*3)
		snap.QualityScore = &score
	}
}
