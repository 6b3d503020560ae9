package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radarinvest/backend/internal/contracts"
)

// ErrAlertNotFound is returned when an alert does not exist or does not
// belong to the requesting user.
var ErrAlertNotFound = errors.New("alert not found")

// Repository persists alerts. The HasRecent* queries are the dedup
// boundary: the generator asks the store, never its own memory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new alert repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new alert and fills in its generated id.
func (r *Repository) Create(ctx context.Context, alert *contracts.Alert) error {
	query := `
		INSERT INTO alerts (user_id, strategy_id, stock_id, type, title, message,
		                    status, ticker, stock_name, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		alert.UserID, alert.StrategyID, alert.StockID, alert.Type, alert.Title,
		alert.Message, alert.Status, alert.Ticker, alert.StockName, alert.Score,
		alert.CreatedAt,
	).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// HasRecentForStock reports whether an alert of the given type exists for
// this user and stock created at or after since.
func (r *Repository) HasRecentForStock(ctx context.Context, userID int64, t contracts.AlertType, stockID int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE user_id = $1 AND type = $2 AND stock_id = $3 AND created_at >= $4
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, t, stockID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("query recent alerts for stock %d: %w", stockID, err)
	}
	return exists, nil
}

// HasRecentForStrategy reports whether an alert of the given type exists
// for this user and strategy created at or after since.
func (r *Repository) HasRecentForStrategy(ctx context.Context, userID int64, t contracts.AlertType, strategyID int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE user_id = $1 AND type = $2 AND strategy_id = $3 AND created_at >= $4
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, t, strategyID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("query recent alerts for strategy %d: %w", strategyID, err)
	}
	return exists, nil
}

// ListByUser returns the user's alerts, newest first. With unreadOnly set
// it skips alerts already read or dismissed.
func (r *Repository) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*contracts.Alert, error) {
	query := `
		SELECT id, user_id, strategy_id, stock_id, type, title, message,
		       status, COALESCE(ticker, ''), COALESCE(stock_name, ''), score,
		       created_at, sent_at, read_at
		FROM alerts
		WHERE user_id = $1
	`
	if unreadOnly {
		query += ` AND status IN ('pending', 'sent')`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*contracts.Alert, 0)
	for rows.Next() {
		var a contracts.Alert
		err := rows.Scan(
			&a.ID, &a.UserID, &a.StrategyID, &a.StockID, &a.Type, &a.Title,
			&a.Message, &a.Status, &a.Ticker, &a.StockName, &a.Score,
			&a.CreatedAt, &a.SentAt, &a.ReadAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate alerts: %w", rows.Err())
	}
	return alerts, nil
}

// UpdateStatus moves an alert to a new status. Transitions into read or
// dismissed also stamp read_at.
func (r *Repository) UpdateStatus(ctx context.Context, id, userID int64, status contracts.AlertStatus) error {
	query := `
		UPDATE alerts
		SET status = $1,
		    read_at = CASE WHEN $1 IN ('read', 'dismissed') THEN NOW() ELSE read_at END
		WHERE id = $2 AND user_id = $3
	`

	tag, err := r.pool.Exec(ctx, query, status, id, userID)
	if err != nil {
		return fmt.Errorf("update alert %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}
