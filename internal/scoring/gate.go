package scoring

import (
	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

// GateBounds holds the non-negotiable quality criteria of the gross filter.
type GateBounds struct {
	PEMax           float64 `yaml:"pe_max"`
	PBMax           float64 `yaml:"pb_max"`
	PayoutMax       float64 `yaml:"payout_max"`
	DebtToEBITDAMax float64 `yaml:"debt_to_ebitda_max"`
}

// DefaultGateBounds returns the built-in gross filter criteria.
func DefaultGateBounds() GateBounds {
	return GateBounds{
		PEMax:           50,
		PBMax:           5,
		PayoutMax:       100,
		DebtToEBITDAMax: 4,
	}
}

// GrossFilter is the binary quality gate in front of the scoring pipeline.
// Snapshots with missing or implausible fundamentals fail closed.
type GrossFilter struct {
	bounds GateBounds
	logger *logger.Logger
}

// NewGrossFilter creates a gross filter with the given bounds.
func NewGrossFilter(bounds GateBounds, log *logger.Logger) *GrossFilter {
	return &GrossFilter{
		bounds: bounds,
		logger: log,
	}
}

// Apply marks every snapshot's qualification flag and returns the subset
// that passed. Missing metrics are an expected condition and never raise
// an error.
func (f *GrossFilter) Apply(cohort []*contracts.StockSnapshot) []*contracts.StockSnapshot {
	qualified := make([]*contracts.StockSnapshot, 0, len(cohort))

	for _, snap := range cohort {
		snap.IsQualified = f.qualifies(snap)
		if snap.IsQualified {
			qualified = append(qualified, snap)
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"total":     len(cohort),
		"qualified": len(qualified),
	}).Debug("Gross filter applied")

	return qualified
}

// qualifies checks the seven core fundamentals against the quality criteria.
func (f *GrossFilter) qualifies(s *contracts.StockSnapshot) bool {
	if !s.HasCoreFundamentals() {
		return false
	}

	return *s.PERatio > 0 && *s.PERatio < f.bounds.PEMax &&
		*s.PBRatio > 0 && *s.PBRatio < f.bounds.PBMax &&
		*s.PayoutRatio < f.bounds.PayoutMax &&
		*s.DebtToEBITDA < f.bounds.DebtToEBITDAMax &&
		*s.ROE > 0 &&
		*s.NetMargin > 0
}
