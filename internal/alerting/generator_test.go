package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/internal/scoring"
	"github.com/radarinvest/backend/internal/strategy"
	"github.com/radarinvest/backend/pkg/logger"
)

func fptr(v float64) *float64 { return &v }

type fakeStockRepo struct {
	snapshots []*contracts.StockSnapshot
}

func (f *fakeStockRepo) ListAll(_ context.Context) ([]*contracts.StockSnapshot, error) {
	return f.snapshots, nil
}

func (f *fakeStockRepo) ListQualified(_ context.Context) ([]*contracts.StockSnapshot, error) {
	qualified := make([]*contracts.StockSnapshot, 0)
	for _, s := range f.snapshots {
		if s.IsQualified {
			qualified = append(qualified, s)
		}
	}
	return qualified, nil
}

func (f *fakeStockRepo) GetByTicker(_ context.Context, ticker string) (*contracts.StockSnapshot, error) {
	for _, s := range f.snapshots {
		if s.Ticker == ticker {
			return s, nil
		}
	}
	return nil, scoring.ErrStockNotFound
}

func (f *fakeStockRepo) Upsert(_ context.Context, _ *contracts.StockSnapshot) error { return nil }

func (f *fakeStockRepo) SaveScores(_ context.Context, _ []*contracts.StockSnapshot) error {
	return nil
}

type fakeStrategyRepo struct {
	strategies []*contracts.Strategy
}

func (f *fakeStrategyRepo) Get(_ context.Context, id int64) (*contracts.Strategy, error) {
	for _, s := range f.strategies {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, strategy.ErrStrategyNotFound
}

func (f *fakeStrategyRepo) ListByUser(_ context.Context, userID int64) ([]*contracts.Strategy, error) {
	out := make([]*contracts.Strategy, 0)
	for _, s := range f.strategies {
		if s.UserID == userID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStrategyRepo) ListNotifiable(_ context.Context, userID int64) ([]*contracts.Strategy, error) {
	out := make([]*contracts.Strategy, 0)
	for _, s := range f.strategies {
		if s.UserID == userID && s.Active && s.NotificationsEnabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStrategyRepo) Create(_ context.Context, _ *contracts.Strategy) error { return nil }
func (f *fakeStrategyRepo) Update(_ context.Context, _ *contracts.Strategy) error { return nil }
func (f *fakeStrategyRepo) Deactivate(_ context.Context, _, _ int64) error        { return nil }

// fakeAlertRepo keeps created alerts in a slice and answers the window
// queries by scanning it, mirroring the SQL EXISTS checks.
type fakeAlertRepo struct {
	alerts []*contracts.Alert
	nextID int64
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *contracts.Alert) error {
	f.nextID++
	alert.ID = f.nextID
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertRepo) HasRecentForStock(_ context.Context, userID int64, t contracts.AlertType, stockID int64, since time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.UserID == userID && a.Type == t && a.StockID != nil && *a.StockID == stockID && !a.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) HasRecentForStrategy(_ context.Context, userID int64, t contracts.AlertType, strategyID int64, since time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.UserID == userID && a.Type == t && a.StrategyID != nil && *a.StrategyID == strategyID && !a.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) ListByUser(_ context.Context, userID int64, _ bool) ([]*contracts.Alert, error) {
	out := make([]*contracts.Alert, 0)
	for _, a := range f.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) UpdateStatus(_ context.Context, _, _ int64, _ contracts.AlertStatus) error {
	return nil
}

func alertCohort() []*contracts.StockSnapshot {
	return []*contracts.StockSnapshot{
		{
			ID:            1,
			Ticker:        "TOPS3",
			Name:          "Top Score SA",
			IsQualified:   true,
			FinalScore:    fptr(9.1),
			DividendYield: fptr(7.2),
			PERatio:       fptr(8),
		},
		{
			ID:            2,
			Ticker:        "MIDD4",
			Name:          "Middling SA",
			IsQualified:   true,
			FinalScore:    fptr(6.5),
			DividendYield: fptr(4.0),
			PERatio:       fptr(12),
		},
		{
			ID:            3,
			Ticker:        "GATE3",
			Name:          "Gated SA",
			IsQualified:   false,
			FinalScore:    fptr(9.9),
			DividendYield: fptr(9.0),
		},
	}
}

func newTestGenerator(stocks *fakeStockRepo, strategies *fakeStrategyRepo, alerts *fakeAlertRepo) *Generator {
	return NewGenerator(
		stocks,
		strategies,
		alerts,
		strategy.NewEvaluator(logger.NewNop()),
		DefaultThresholds(),
		logger.NewNop(),
	)
}

func TestGenerateAll_Idempotent(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	strategies := &fakeStrategyRepo{strategies: []*contracts.Strategy{
		{
			ID: 10, UserID: 1, Name: "cheap payers", Active: true, NotificationsEnabled: true,
			Rules: []contracts.FilterRule{
				{Indicator: contracts.IndicatorPERatio, Operator: contracts.OpLessThan, ValueNumeric: fptr(15)},
			},
		},
	}}
	alerts := &fakeAlertRepo{}

	g := newTestGenerator(stocks, strategies, alerts)
	user := &contracts.User{ID: 1}

	first, err := g.GenerateAll(context.Background(), user)
	require.NoError(t, err)
	// One strategy match, one score alert (TOPS3 at 9.1), one dividend
	// alert (TOPS3 at 7.2%).
	require.Len(t, first, 3)

	second, err := g.GenerateAll(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, second, "an immediate rerun must create nothing")
}

func TestCheckScoreAlerts_WindowBlocksWithinSevenDays(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	alerts := &fakeAlertRepo{}
	g := newTestGenerator(stocks, &fakeStrategyRepo{}, alerts)

	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return t0 }

	user := &contracts.User{ID: 1}
	created, err := g.CheckScoreAlerts(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "TOPS3", created[0].Ticker)

	// One hour later the window still holds.
	g.now = func() time.Time { return t0.Add(time.Hour) }
	created, err = g.CheckScoreAlerts(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, created)

	// Past the seven day window a fresh alert goes out.
	g.now = func() time.Time { return t0.Add(7*24*time.Hour + time.Minute) }
	created, err = g.CheckScoreAlerts(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestCheckScoreAlerts_ThresholdIsInclusive(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: []*contracts.StockSnapshot{
		{ID: 1, Ticker: "EXACT", IsQualified: true, FinalScore: fptr(8.0)},
		{ID: 2, Ticker: "UNDER", IsQualified: true, FinalScore: fptr(7.99)},
		{ID: 3, Ticker: "NOSCR", IsQualified: true},
	}}
	g := newTestGenerator(stocks, &fakeStrategyRepo{}, &fakeAlertRepo{})

	created, err := g.CheckScoreAlerts(context.Background(), &contracts.User{ID: 1})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "EXACT", created[0].Ticker)
}

func TestCheckDividendAlerts_SkipsUnqualified(t *testing.T) {
	// GATE3 yields 9% but failed the gross filter, so no alert for it.
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	g := newTestGenerator(stocks, &fakeStrategyRepo{}, &fakeAlertRepo{})

	created, err := g.CheckDividendAlerts(context.Background(), &contracts.User{ID: 1})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "TOPS3", created[0].Ticker)
	assert.Equal(t, contracts.AlertDividend, created[0].Type)
}

func TestCheckDividendAlerts_ThirtyDayWindow(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	g := newTestGenerator(stocks, &fakeStrategyRepo{}, &fakeAlertRepo{})

	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return t0 }

	user := &contracts.User{ID: 1}
	created, err := g.CheckDividendAlerts(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, created, 1)

	g.now = func() time.Time { return t0.Add(29 * 24 * time.Hour) }
	created, err = g.CheckDividendAlerts(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, created)

	g.now = func() time.Time { return t0.Add(31 * 24 * time.Hour) }
	created, err = g.CheckDividendAlerts(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestCheckStrategyAlerts_ReferencesTopRankedMatch(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	strategies := &fakeStrategyRepo{strategies: []*contracts.Strategy{
		{
			ID: 10, UserID: 1, Name: "any dividend", Active: true, NotificationsEnabled: true,
			Rules: []contracts.FilterRule{
				{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterThan, ValueNumeric: fptr(1)},
			},
		},
	}}
	g := newTestGenerator(stocks, strategies, &fakeAlertRepo{})

	created, err := g.CheckStrategyAlerts(context.Background(), &contracts.User{ID: 1})
	require.NoError(t, err)
	require.Len(t, created, 1)

	// The rule matches all three snapshots; the alert points at the one
	// with the highest final score.
	assert.Equal(t, "GATE3", created[0].Ticker)
	require.NotNil(t, created[0].StrategyID)
	assert.Equal(t, int64(10), *created[0].StrategyID)
	assert.Equal(t, contracts.AlertStrategyMatch, created[0].Type)
}

func TestCheckStrategyAlerts_NoMatchNoAlert(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	strategies := &fakeStrategyRepo{strategies: []*contracts.Strategy{
		{
			ID: 10, UserID: 1, Name: "impossible", Active: true, NotificationsEnabled: true,
			Rules: []contracts.FilterRule{
				{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterThan, ValueNumeric: fptr(50)},
			},
		},
	}}
	g := newTestGenerator(stocks, strategies, &fakeAlertRepo{})

	created, err := g.CheckStrategyAlerts(context.Background(), &contracts.User{ID: 1})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestCheckStrategyAlerts_SkipsMuted(t *testing.T) {
	stocks := &fakeStockRepo{snapshots: alertCohort()}
	strategies := &fakeStrategyRepo{strategies: []*contracts.Strategy{
		{
			ID: 10, UserID: 1, Name: "muted", Active: true, NotificationsEnabled: false,
			Rules: []contracts.FilterRule{
				{Indicator: contracts.IndicatorDividendYield, Operator: contracts.OpGreaterThan, ValueNumeric: fptr(1)},
			},
		},
	}}
	g := newTestGenerator(stocks, strategies, &fakeAlertRepo{})

	created, err := g.CheckStrategyAlerts(context.Background(), &contracts.User{ID: 1})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestTopMatch_UnscoredLast(t *testing.T) {
	matches := []*contracts.StockSnapshot{
		{Ticker: "NOSCR"},
		{Ticker: "BBBB4", FinalScore: fptr(7.0)},
		{Ticker: "AAAA3", FinalScore: fptr(7.0)},
	}

	top := topMatch(matches)
	assert.Equal(t, "AAAA3", top.Ticker, "ties break by ticker, unscored sorts last")
}
