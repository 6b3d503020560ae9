package scoring

import (
	"context"
	"math"
	"sort"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

// Engine runs the full recommendation pipeline: gate, axis scores,
// archetype weighting and ranking. Every method is a pure computation over
// the cohort it receives; loading and persisting snapshots happens at the
// caller's boundary. One invocation never shares mutable state with
// another, so concurrent callers must pass their own cohort copies.
type Engine struct {
	gate    *GrossFilter
	weights contracts.WeightTable
	logger  *logger.Logger
}

// NewEngine creates a scoring engine. The weight table must already be
// validated; use engineconfig.Load or contracts.DefaultWeightTable.
func NewEngine(gate *GrossFilter, weights contracts.WeightTable, log *logger.Logger) *Engine {
	return &Engine{
		gate:    gate,
		weights: weights,
		logger:  log,
	}
}

// ApplyGrossFilter runs the quality gate over a cohort.
func (e *Engine) ApplyGrossFilter(cohort []*contracts.StockSnapshot) []*contracts.StockSnapshot {
	return e.gate.Apply(cohort)
}

// CalculateScores computes the three axis sub-scores for a qualified
// cohort in place. Percentiles are computed in batch per metric; a snapshot
// missing a metric required by an axis simply keeps that axis nil.
func (e *Engine) CalculateScores(cohort []*contracts.StockSnapshot) []*contracts.StockSnapshot {
	if len(cohort) == 0 {
		return cohort
	}

	scoreValue(cohort)
	scoreIncome(cohort)
	scoreQuality(cohort)

	return cohort
}

// CalculateFinalScores blends the axis scores using the archetype's weight
// triple, rounding to 2 decimals. Snapshots missing any axis score keep a
// nil final score and are excluded from ranking later. Unknown archetypes
// use the patient partner weights.
func (e *Engine) CalculateFinalScores(cohort []*contracts.StockSnapshot, archetype contracts.Archetype) []*contracts.StockSnapshot {
	w := e.weights.WeightsFor(archetype)

	for _, snap := range cohort {
		if !snap.HasAllScores() {
			continue
		}

		final := round2(*snap.ValueScore*w.Value +
			*snap.IncomeScore*w.Income +
			*snap.QualityScore*w.Quality)
		snap.FinalScore = &final
	}

	return cohort
}

// GetTopRecommendations filters to qualified snapshots with a final score,
// sorts them descending and truncates to limit. Ties break on ticker so
// repeated calls over the same cohort return the same order.
func (e *Engine) GetTopRecommendations(cohort []*contracts.StockSnapshot, limit int) []*contracts.StockSnapshot {
	ranked := make([]*contracts.StockSnapshot, 0, len(cohort))
	for _, snap := range cohort {
		if snap.IsQualified && snap.FinalScore != nil {
			ranked = append(ranked, snap)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if *ranked[i].FinalScore != *ranked[j].FinalScore {
			return *ranked[i].FinalScore > *ranked[j].FinalScore
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Recommend runs the whole pipeline for one archetype and returns the
// top-ranked snapshots.
func (e *Engine) Recommend(ctx context.Context, cohort []*contracts.StockSnapshot, archetype contracts.Archetype, limit int) []*contracts.StockSnapshot {
	qualified := e.ApplyGrossFilter(cohort)
	e.CalculateScores(qualified)
	e.CalculateFinalScores(qualified, archetype)
	top := e.GetTopRecommendations(qualified, limit)

	e.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"cohort":    len(cohort),
		"qualified": len(qualified),
		"returned":  len(top),
		"archetype": archetype,
	}).Info("Recommendation pipeline completed")

	return top
}

// AdjustForDiversification nudges final scores toward sectors that are
// under-represented in the caller's portfolio allocation (fraction of
// portfolio value per sector). Sectors below 10% earn +0.5, capped at 10.
// Pure extension point; not part of the default pipeline.
func (e *Engine) AdjustForDiversification(cohort []*contracts.StockSnapshot, allocation map[string]float64) []*contracts.StockSnapshot {
	for _, snap := range cohort {
		if snap.Sector == "" || snap.FinalScore == nil {
			continue
		}
		if allocation[snap.Sector] < 0.10 {
			adjusted := math.Min(10, *snap.FinalScore+0.5)
			snap.FinalScore = &adjusted
		}
	}
	return cohort
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
