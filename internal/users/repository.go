package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radarinvest/backend/internal/contracts"
)

// ErrUserNotFound is returned when no account matches the given id.
var ErrUserNotFound = errors.New("user not found")

// Repository reads the account fields the engine needs. Account creation
// and authentication belong to a separate service.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one user by id.
func (r *Repository) Get(ctx context.Context, id int64) (*contracts.User, error) {
	query := `
		SELECT id, email, COALESCE(archetype, '')
		FROM users
		WHERE id = $1
	`

	var u contracts.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Archetype)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	return &u, nil
}

// ListNotifiable returns every user who opted into alert notifications.
// The alert sweep iterates this list.
func (r *Repository) ListNotifiable(ctx context.Context) ([]*contracts.User, error) {
	query := `
		SELECT id, email, COALESCE(archetype, '')
		FROM users
		WHERE notifications_enabled
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query notifiable users: %w", err)
	}
	defer rows.Close()

	users := make([]*contracts.User, 0)
	for rows.Next() {
		var u contracts.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Archetype); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}
	return users, nil
}
