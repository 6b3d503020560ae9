package alerting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

// Thresholds holds the trigger levels for score and dividend alerts.
type Thresholds struct {
	ScoreAlert    float64 `yaml:"score_alert"`    // final score trigger
	DividendAlert float64 `yaml:"dividend_alert"` // dividend yield trigger (percent)
}

// DefaultThresholds returns the built-in alert trigger levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ScoreAlert:    8.0,
		DividendAlert: 6.0,
	}
}

// Generator produces alerts for one user at a time. Every check is
// idempotent within its type's dedup window: the window query always hits
// the alert store before a create, so reruns and restarts never duplicate.
type Generator struct {
	stocks     contracts.StockRepository
	strategies contracts.StrategyRepository
	alerts     contracts.AlertRepository
	evaluator  contracts.StrategyEvaluator
	thresholds Thresholds
	now        func() time.Time
	logger     *logger.Logger
}

// NewGenerator creates an alert generator.
func NewGenerator(
	stocks contracts.StockRepository,
	strategies contracts.StrategyRepository,
	alerts contracts.AlertRepository,
	evaluator contracts.StrategyEvaluator,
	thresholds Thresholds,
	log *logger.Logger,
) *Generator {
	return &Generator{
		stocks:     stocks,
		strategies: strategies,
		alerts:     alerts,
		evaluator:  evaluator,
		thresholds: thresholds,
		now:        time.Now,
		logger:     log,
	}
}

// GenerateAll runs the three independent checks and returns the union of
// newly created alerts.
func (g *Generator) GenerateAll(ctx context.Context, user *contracts.User) ([]*contracts.Alert, error) {
	created := make([]*contracts.Alert, 0)

	strategyAlerts, err := g.CheckStrategyAlerts(ctx, user)
	if err != nil {
		return created, fmt.Errorf("strategy alerts: %w", err)
	}
	created = append(created, strategyAlerts...)

	scoreAlerts, err := g.CheckScoreAlerts(ctx, user)
	if err != nil {
		return created, fmt.Errorf("score alerts: %w", err)
	}
	created = append(created, scoreAlerts...)

	dividendAlerts, err := g.CheckDividendAlerts(ctx, user)
	if err != nil {
		return created, fmt.Errorf("dividend alerts: %w", err)
	}
	created = append(created, dividendAlerts...)

	g.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"user":     user.ID,
		"created":  len(created),
		"strategy": len(strategyAlerts),
		"score":    len(scoreAlerts),
		"dividend": len(dividendAlerts),
	}).Info("Alert generation completed")

	return created, nil
}

// CheckStrategyAlerts evaluates the user's notifiable strategies against
// the full cohort. One alert per strategy, referencing the top-ranked
// matching snapshot, at most once per 24h window.
func (g *Generator) CheckStrategyAlerts(ctx context.Context, user *contracts.User) ([]*contracts.Alert, error) {
	strategies, err := g.strategies.ListNotifiable(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifiable strategies: %w", err)
	}
	if len(strategies) == 0 {
		return nil, nil
	}

	cohort, err := g.stocks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cohort: %w", err)
	}

	created := make([]*contracts.Alert, 0)
	for _, strat := range strategies {
		since := g.now().Add(-contracts.AlertStrategyMatch.DedupWindow())
		exists, err := g.alerts.HasRecentForStrategy(ctx, user.ID, contracts.AlertStrategyMatch, strat.ID, since)
		if err != nil {
			return created, fmt.Errorf("dedup check for strategy %d: %w", strat.ID, err)
		}
		if exists {
			continue
		}

		matches := g.evaluator.Apply(ctx, cohort, strat)
		if len(matches) == 0 {
			continue
		}

		top := topMatch(matches)
		alert := g.newAlert(user.ID, contracts.AlertStrategyMatch, top)
		alert.StrategyID = &strat.ID
		alert.Title = fmt.Sprintf("New opportunity in strategy %q", strat.Name)
		alert.Message = fmt.Sprintf("%s matches all criteria of your strategy %q.", top.Ticker, strat.Name)
		if top.FinalScore != nil {
			alert.Message = fmt.Sprintf("%s Score: %.1f/10.", alert.Message, *top.FinalScore)
		}

		if err := g.alerts.Create(ctx, alert); err != nil {
			return created, fmt.Errorf("create strategy alert: %w", err)
		}
		created = append(created, alert)
	}

	return created, nil
}

// CheckScoreAlerts alerts on qualified snapshots whose final score reached
// the score threshold, at most once per stock per 7-day window.
func (g *Generator) CheckScoreAlerts(ctx context.Context, user *contracts.User) ([]*contracts.Alert, error) {
	qualified, err := g.stocks.ListQualified(ctx)
	if err != nil {
		return nil, fmt.Errorf("load qualified stocks: %w", err)
	}

	created := make([]*contracts.Alert, 0)
	for _, snap := range qualified {
		if snap.FinalScore == nil || *snap.FinalScore < g.thresholds.ScoreAlert {
			continue
		}

		since := g.now().Add(-contracts.AlertScore.DedupWindow())
		exists, err := g.alerts.HasRecentForStock(ctx, user.ID, contracts.AlertScore, snap.ID, since)
		if err != nil {
			return created, fmt.Errorf("dedup check for stock %d: %w", snap.ID, err)
		}
		if exists {
			continue
		}

		alert := g.newAlert(user.ID, contracts.AlertScore, snap)
		alert.Title = fmt.Sprintf("Excellent score: %s", snap.Ticker)
		alert.Message = fmt.Sprintf("%s reached a score of %.1f/10. Worth a closer look.", snap.Ticker, *snap.FinalScore)

		if err := g.alerts.Create(ctx, alert); err != nil {
			return created, fmt.Errorf("create score alert: %w", err)
		}
		created = append(created, alert)
	}

	return created, nil
}

// CheckDividendAlerts alerts on qualified snapshots whose dividend yield
// reached the dividend threshold, at most once per stock per 30-day window.
func (g *Generator) CheckDividendAlerts(ctx context.Context, user *contracts.User) ([]*contracts.Alert, error) {
	qualified, err := g.stocks.ListQualified(ctx)
	if err != nil {
		return nil, fmt.Errorf("load qualified stocks: %w", err)
	}

	created := make([]*contracts.Alert, 0)
	for _, snap := range qualified {
		if snap.DividendYield == nil || *snap.DividendYield < g.thresholds.DividendAlert {
			continue
		}

		since := g.now().Add(-contracts.AlertDividend.DedupWindow())
		exists, err := g.alerts.HasRecentForStock(ctx, user.ID, contracts.AlertDividend, snap.ID, since)
		if err != nil {
			return created, fmt.Errorf("dedup check for stock %d: %w", snap.ID, err)
		}
		if exists {
			continue
		}

		alert := g.newAlert(user.ID, contracts.AlertDividend, snap)
		alert.Title = fmt.Sprintf("High dividend yield: %s", snap.Ticker)
		alert.Message = fmt.Sprintf("%s pays a dividend yield of %.1f%%.", snap.Ticker, *snap.DividendYield)

		if err := g.alerts.Create(ctx, alert); err != nil {
			return created, fmt.Errorf("create dividend alert: %w", err)
		}
		created = append(created, alert)
	}

	return created, nil
}

// newAlert builds the common alert fields for a triggering snapshot.
func (g *Generator) newAlert(userID int64, t contracts.AlertType, snap *contracts.StockSnapshot) *contracts.Alert {
	return &contracts.Alert{
		UserID:    userID,
		StockID:   &snap.ID,
		Type:      t,
		Status:    contracts.AlertPending,
		Ticker:    snap.Ticker,
		StockName: snap.Name,
		Score:     snap.FinalScore,
		CreatedAt: g.now(),
	}
}

// topMatch picks the best snapshot from a non-empty match set: highest
// final score first, unscored snapshots last, ties broken by ticker.
func topMatch(matches []*contracts.StockSnapshot) *contracts.StockSnapshot {
	sorted := make([]*contracts.StockSnapshot, len(matches))
	copy(sorted, matches)

	sort.Slice(sorted, func(i, j int) bool {
		si, sj := sorted[i].FinalScore, sorted[j].FinalScore
		switch {
		case si != nil && sj == nil:
			return true
		case si == nil && sj != nil:
			return false
		case si != nil && sj != nil && *si != *sj:
			return *si > *sj
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})

	return sorted[0]
}
