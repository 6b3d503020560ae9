package strategy

import (
	"context"
	"strings"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

// Evaluator applies user-authored strategies to snapshot cohorts. A
// snapshot matches only when every rule passes; evaluation short-circuits
// on the first failing rule. Rules fail closed: a missing metric, an
// unknown indicator or an operand of the wrong kind makes the rule a
// non-match instead of an error, so one bad rule never takes down a batch.
type Evaluator struct {
	logger *logger.Logger
}

// NewEvaluator creates a strategy evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{logger: log}
}

// Apply returns the snapshots matching every rule of the strategy.
func (e *Evaluator) Apply(ctx context.Context, cohort []*contracts.StockSnapshot, strat *contracts.Strategy) []*contracts.StockSnapshot {
	matching := make([]*contracts.StockSnapshot, 0)

	for _, snap := range cohort {
		if e.matches(snap, strat) {
			matching = append(matching, snap)
		}
	}

	e.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"strategy": strat.Name,
		"cohort":   len(cohort),
		"matched":  len(matching),
	}).Debug("Strategy evaluated")

	return matching
}

// matches evaluates the logical AND of all rules for one snapshot.
func (e *Evaluator) matches(snap *contracts.StockSnapshot, strat *contracts.Strategy) bool {
	for _, rule := range strat.Rules {
		if !e.ruleMatches(snap, rule) {
			return false
		}
	}
	return true
}

// ruleMatches dispatches on the closed operator set. Every variant is a
// pure predicate; the switch must stay exhaustive over contracts.Operator.
func (e *Evaluator) ruleMatches(snap *contracts.StockSnapshot, rule contracts.FilterRule) bool {
	switch rule.Operator {
	case contracts.OpGreaterThan:
		v, ok := numericOperands(snap, rule)
		return ok && v > *rule.ValueNumeric

	case contracts.OpLessThan:
		v, ok := numericOperands(snap, rule)
		return ok && v < *rule.ValueNumeric

	case contracts.OpGreaterEqual:
		v, ok := numericOperands(snap, rule)
		return ok && v >= *rule.ValueNumeric

	case contracts.OpLessEqual:
		v, ok := numericOperands(snap, rule)
		return ok && v <= *rule.ValueNumeric

	case contracts.OpEquals:
		// Numeric equality when a numeric operand is set, string equality
		// otherwise. No coercion between the two.
		if rule.ValueNumeric != nil {
			v, ok := snap.NumericIndicator(rule.Indicator)
			return ok && v == *rule.ValueNumeric
		}
		s, ok := snap.StringIndicator(rule.Indicator)
		return ok && s == rule.ValueString

	case contracts.OpIn:
		s, ok := snap.StringIndicator(rule.Indicator)
		return ok && inSet(s, rule.ValueString)

	case contracts.OpNotIn:
		s, ok := snap.StringIndicator(rule.Indicator)
		return ok && !inSet(s, rule.ValueString)

	default:
		// Unknown operator is a configuration error; fail closed.
		e.logger.WithFields(map[string]interface{}{
			"operator":  rule.Operator,
			"indicator": rule.Indicator,
		}).Warn("Unknown filter operator")
		return false
	}
}

// numericOperands resolves the snapshot value for a numeric comparison.
// Fails when the rule has no numeric operand or the metric is absent.
func numericOperands(snap *contracts.StockSnapshot, rule contracts.FilterRule) (float64, bool) {
	if rule.ValueNumeric == nil {
		return 0, false
	}
	return snap.NumericIndicator(rule.Indicator)
}

// inSet tests membership in a comma-separated value set.
func inSet(value, set string) bool {
	for _, member := range strings.Split(set, ",") {
		if value == member {
			return true
		}
	}
	return false
}
