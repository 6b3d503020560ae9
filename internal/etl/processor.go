package etl

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/internal/scoring"
	"github.com/radarinvest/backend/pkg/logger"
)

// Processor ingests raw snapshot data: it fills in derived metrics,
// applies the quality gate and persists the result. Scoring runs
// separately over the whole cohort because axis scores are relative.
type Processor struct {
	stocks contracts.StockRepository
	gate   *scoring.GrossFilter
	engine *scoring.Engine
	now    func() time.Time
	logger *logger.Logger
}

// NewProcessor creates a data processor.
func NewProcessor(stocks contracts.StockRepository, gate *scoring.GrossFilter, engine *scoring.Engine, log *logger.Logger) *Processor {
	return &Processor{
		stocks: stocks,
		gate:   gate,
		engine: engine,
		now:    time.Now,
		logger: log,
	}
}

// ProcessSnapshot enriches one snapshot with derived metrics, gates it and
// upserts it. The snapshot is mutated in place.
func (p *Processor) ProcessSnapshot(ctx context.Context, snap *contracts.StockSnapshot) error {
	if snap.Ticker == "" {
		return fmt.Errorf("snapshot has no ticker")
	}

	DeriveMetrics(snap)
	p.gate.Apply([]*contracts.StockSnapshot{snap})
	snap.LastUpdated = p.now()

	if err := p.stocks.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("upsert %s: %w", snap.Ticker, err)
	}

	p.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"ticker":    snap.Ticker,
		"qualified": snap.IsQualified,
	}).Debug("Snapshot processed")

	return nil
}

// RescoreAll reloads the full cohort, reapplies the gate and recomputes
// every score from scratch, then persists the results.
func (p *Processor) RescoreAll(ctx context.Context) error {
	cohort, err := p.stocks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load cohort: %w", err)
	}
	if len(cohort) == 0 {
		return nil
	}

	for _, snap := range cohort {
		DeriveMetrics(snap)
	}

	qualified := p.engine.ApplyGrossFilter(cohort)
	p.engine.CalculateScores(qualified)
	p.engine.CalculateFinalScores(qualified, contracts.ArchetypePatientPartner)

	if err := p.stocks.SaveScores(ctx, cohort); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}

	p.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"total":     len(cohort),
		"qualified": len(qualified),
	}).Info("Cohort rescored")

	return nil
}

// DeriveMetrics computes the metrics not delivered by upstream feeds:
// the 5y dividend CAGR estimate, the Bazin ceiling price and the Graham
// safety margin. Metrics whose inputs are missing stay nil.
func DeriveMetrics(s *contracts.StockSnapshot) {
	s.DividendCAGR5Y = estimateDividendCAGR(s)
	s.BazinPrice = bazinPrice(s)
	s.GrahamMargin = grahamMargin(s)
}

// estimateDividendCAGR stands in for a real dividend history lookup.
// TODO: replace with a 5y dividend history query once the history feed
// lands; until then growth is estimated as a tenth of the current yield.
func estimateDividendCAGR(s *contracts.StockSnapshot) *float64 {
	if s.DividendYield == nil {
		return nil
	}
	cagr := math.Max(0, *s.DividendYield*0.1)
	return &cagr
}

// bazinPrice computes the ceiling price at which the stock would yield 6%,
// assuming the dividend per share stays constant.
func bazinPrice(s *contracts.StockSnapshot) *float64 {
	if s.CurrentPrice == nil || s.DividendYield == nil {
		return nil
	}
	if *s.CurrentPrice <= 0 || *s.DividendYield <= 0 {
		return nil
	}

	price := *s.CurrentPrice * (6.0 / *s.DividendYield)
	return &price
}

// grahamMargin computes the percentage distance between the current price
// and the Graham fair value sqrt(22.5 * EPS * BVPS), with EPS and BVPS
// backed out of the P/E and P/B multiples. Positive means undervalued.
func grahamMargin(s *contracts.StockSnapshot) *float64 {
	if s.CurrentPrice == nil || s.PERatio == nil || s.PBRatio == nil {
		return nil
	}
	price := *s.CurrentPrice
	if price <= 0 || *s.PERatio <= 0 || *s.PBRatio <= 0 {
		return nil
	}

	eps := price / *s.PERatio
	bvps := price / *s.PBRatio
	fairValue := math.Sqrt(22.5 * eps * bvps)
	if fairValue == 0 {
		return nil
	}

	margin := ((fairValue - price) / fairValue) * 100
	return &margin
}
