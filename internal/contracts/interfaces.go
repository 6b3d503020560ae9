package contracts

import (
	"context"
	"time"
)

// StockRepository loads snapshot cohorts and persists computed scores.
type StockRepository interface {
	ListAll(ctx context.Context) ([]*StockSnapshot, error)
	ListQualified(ctx context.Context) ([]*StockSnapshot, error)
	GetByTicker(ctx context.Context, ticker string) (*StockSnapshot, error)
	Upsert(ctx context.Context, snapshot *StockSnapshot) error
	SaveScores(ctx context.Context, snapshots []*StockSnapshot) error
}

// StrategyRepository persists user strategies and their rules.
type StrategyRepository interface {
	Get(ctx context.Context, id int64) (*Strategy, error)
	ListByUser(ctx context.Context, userID int64) ([]*Strategy, error)
	ListNotifiable(ctx context.Context, userID int64) ([]*Strategy, error)
	Create(ctx context.Context, strategy *Strategy) error
	Update(ctx context.Context, strategy *Strategy) error
	Deactivate(ctx context.Context, id, userID int64) error
}

// AlertRepository persists alerts and answers the time-windowed uniqueness
// queries that back deduplication. The window check must hit the store, not
// in-memory state, so it stays correct across restarts and processes.
type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	HasRecentForStock(ctx context.Context, userID int64, t AlertType, stockID int64, since time.Time) (bool, error)
	HasRecentForStrategy(ctx context.Context, userID int64, t AlertType, strategyID int64, since time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Alert, error)
	UpdateStatus(ctx context.Context, id, userID int64, status AlertStatus) error
}

// UserRepository exposes the account fields the engine needs.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*User, error)
	ListNotifiable(ctx context.Context) ([]*User, error)
}

// Recommender produces the ranked recommendation list for one archetype.
type Recommender interface {
	Recommend(ctx context.Context, cohort []*StockSnapshot, archetype Archetype, limit int) []*StockSnapshot
}

// StrategyEvaluator applies a user strategy to a cohort.
type StrategyEvaluator interface {
	Apply(ctx context.Context, cohort []*StockSnapshot, strategy *Strategy) []*StockSnapshot
}

// AlertGenerator runs all alert checks for one user.
type AlertGenerator interface {
	GenerateAll(ctx context.Context, user *User) ([]*Alert, error)
}
