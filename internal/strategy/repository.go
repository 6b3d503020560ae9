package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radarinvest/backend/internal/contracts"
)

// ErrStrategyNotFound is returned when a strategy does not exist or does
// not belong to the requesting user.
var ErrStrategyNotFound = errors.New("strategy not found")

// Repository persists strategies and their filter rules.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new strategy repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one strategy with its rules.
func (r *Repository) Get(ctx context.Context, id int64) (*contracts.Strategy, error) {
	query := `
		SELECT id, user_id, name, COALESCE(description, ''), active,
		       notifications_enabled, created_at, updated_at
		FROM strategies
		WHERE id = $1
	`

	var s contracts.Strategy
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Name, &s.Description, &s.Active,
		&s.NotificationsEnabled, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStrategyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query strategy %d: %w", id, err)
	}

	if err := r.loadRules(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns all active strategies of a user.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*contracts.Strategy, error) {
	return r.list(ctx, `
		SELECT id, user_id, name, COALESCE(description, ''), active,
		       notifications_enabled, created_at, updated_at
		FROM strategies
		WHERE user_id = $1 AND active
		ORDER BY created_at DESC
	`, userID)
}

// ListNotifiable returns the user's active strategies that opted into
// match alerting.
func (r *Repository) ListNotifiable(ctx context.Context, userID int64) ([]*contracts.Strategy, error) {
	return r.list(ctx, `
		SELECT id, user_id, name, COALESCE(description, ''), active,
		       notifications_enabled, created_at, updated_at
		FROM strategies
		WHERE user_id = $1 AND active AND notifications_enabled
		ORDER BY created_at
	`, userID)
}

func (r *Repository) list(ctx context.Context, query string, userID int64) ([]*contracts.Strategy, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	strategies := make([]*contracts.Strategy, 0)
	for rows.Next() {
		var s contracts.Strategy
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.Description, &s.Active,
			&s.NotificationsEnabled, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		strategies = append(strategies, &s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate strategies: %w", rows.Err())
	}

	for _, s := range strategies {
		if err := r.loadRules(ctx, s); err != nil {
			return nil, err
		}
	}
	return strategies, nil
}

// loadRules attaches the ordered rule list to a strategy.
func (r *Repository) loadRules(ctx context.Context, s *contracts.Strategy) error {
	query := `
		SELECT id, indicator, operator, value_numeric, COALESCE(value_string, '')
		FROM strategy_rules
		WHERE strategy_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, s.ID)
	if err != nil {
		return fmt.Errorf("query rules for strategy %d: %w", s.ID, err)
	}
	defer rows.Close()

	s.Rules = make([]contracts.FilterRule, 0)
	for rows.Next() {
		var rule contracts.FilterRule
		if err := rows.Scan(&rule.ID, &rule.Indicator, &rule.Operator, &rule.ValueNumeric, &rule.ValueString); err != nil {
			return fmt.Errorf("scan rule: %w", err)
		}
		s.Rules = append(s.Rules, rule)
	}
	if rows.Err() != nil {
		return fmt.Errorf("iterate rules: %w", rows.Err())
	}
	return nil
}

// Create inserts a strategy and its rules in one transaction.
func (r *Repository) Create(ctx context.Context, s *contracts.Strategy) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO strategies (user_id, name, description, active, notifications_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, s.UserID, s.Name, s.Description, s.Active, s.NotificationsEnabled).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert strategy: %w", err)
	}

	if err := insertRules(ctx, tx, s); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Update rewrites a strategy and replaces its rules.
func (r *Repository) Update(ctx context.Context, s *contracts.Strategy) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE strategies
		SET name = $1, description = $2, notifications_enabled = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5 AND active
	`, s.Name, s.Description, s.NotificationsEnabled, s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update strategy %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStrategyNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM strategy_rules WHERE strategy_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete old rules: %w", err)
	}
	if err := insertRules(ctx, tx, s); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a strategy. Its rules stay in place so the
// record can be audited or restored.
func (r *Repository) Deactivate(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE strategies
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND active
	`, id, userID)
	if err != nil {
		return fmt.Errorf("deactivate strategy %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStrategyNotFound
	}
	return nil
}

func insertRules(ctx context.Context, tx pgx.Tx, s *contracts.Strategy) error {
	query := `
		INSERT INTO strategy_rules (strategy_id, indicator, operator, value_numeric, value_string)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for i := range s.Rules {
		rule := &s.Rules[i]
		var valueString *string
		if rule.ValueString != "" {
			valueString = &rule.ValueString
		}
		err := tx.QueryRow(ctx, query, s.ID, rule.Indicator, rule.Operator, rule.ValueNumeric, valueString).Scan(&rule.ID)
		if err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}
	return nil
}
