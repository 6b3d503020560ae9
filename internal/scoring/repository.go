package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radarinvest/backend/internal/contracts"
)

// ErrStockNotFound is returned when a ticker has no snapshot.
var ErrStockNotFound = errors.New("stock not found")

// Repository persists stock snapshots and their computed scores.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new stock repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const snapshotColumns = `
	id, ticker, name, COALESCE(sector, ''), COALESCE(subsector, ''),
	current_price, market_cap,
	pe_ratio, pb_ratio, dividend_yield, payout_ratio, debt_to_ebitda, roe, net_margin,
	dividend_cagr_5y, bazin_price, graham_margin,
	value_score, income_score, quality_score, final_score,
	is_qualified, COALESCE(data_source, ''), last_updated
`

// ListAll returns every stock snapshot ordered by ticker.
func (r *Repository) ListAll(ctx context.Context) ([]*contracts.StockSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stocks ORDER BY ticker`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// ListQualified returns the snapshots that passed the gross filter in the
// most recent cycle, ordered by ticker.
func (r *Repository) ListQualified(ctx context.Context) ([]*contracts.StockSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stocks WHERE is_qualified ORDER BY ticker`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query qualified stocks: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTicker returns one snapshot or ErrStockNotFound.
func (r *Repository) GetByTicker(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stocks WHERE ticker = $1`

	row := r.pool.QueryRow(ctx, query, ticker)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query stock %s: %w", ticker, err)
	}
	return snap, nil
}

// Upsert inserts or refreshes one snapshot keyed by ticker. Used by the
// data refresh boundary; scores are written separately by SaveScores.
func (r *Repository) Upsert(ctx context.Context, s *contracts.StockSnapshot) error {
	query := `
		INSERT INTO stocks (
			ticker, name, sector, subsector, current_price, market_cap,
			pe_ratio, pb_ratio, dividend_yield, payout_ratio, debt_to_ebitda, roe, net_margin,
			dividend_cagr_5y, bazin_price, graham_margin,
			is_qualified, data_source, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			subsector = EXCLUDED.subsector,
			current_price = EXCLUDED.current_price,
			market_cap = EXCLUDED.market_cap,
			pe_ratio = EXCLUDED.pe_ratio,
			pb_ratio = EXCLUDED.pb_ratio,
			dividend_yield = EXCLUDED.dividend_yield,
			payout_ratio = EXCLUDED.payout_ratio,
			debt_to_ebitda = EXCLUDED.debt_to_ebitda,
			roe = EXCLUDED.roe,
			net_margin = EXCLUDED.net_margin,
			dividend_cagr_5y = EXCLUDED.dividend_cagr_5y,
			bazin_price = EXCLUDED.bazin_price,
			graham_margin = EXCLUDED.graham_margin,
			is_qualified = EXCLUDED.is_qualified,
			data_source = EXCLUDED.data_source,
			last_updated = NOW()
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		s.Ticker, s.Name, s.Sector, s.Subsector, s.CurrentPrice, s.MarketCap,
		s.PERatio, s.PBRatio, s.DividendYield, s.PayoutRatio, s.DebtToEBITDA, s.ROE, s.NetMargin,
		s.DividendCAGR5Y, s.BazinPrice, s.GrahamMargin,
		s.IsQualified, s.DataSource,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("upsert stock %s: %w", s.Ticker, err)
	}

	return nil
}

// SaveScores writes back qualification flags and computed scores for a
// scored cohort in one transaction.
func (r *Repository) SaveScores(ctx context.Context, snapshots []*contracts.StockSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE stocks SET
			value_score = $2,
			income_score = $3,
			quality_score = $4,
			final_score = $5,
			is_qualified = $6,
			last_updated = NOW()
		WHERE ticker = $1
	`

	for _, s := range snapshots {
		_, err := tx.Exec(ctx, query,
			s.Ticker, s.ValueScore, s.IncomeScore, s.QualityScore, s.FinalScore, s.IsQualified,
		)
		if err != nil {
			return fmt.Errorf("save scores for %s: %w", s.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*contracts.StockSnapshot, error) {
	var s contracts.StockSnapshot
	err := row.Scan(
		&s.ID, &s.Ticker, &s.Name, &s.Sector, &s.Subsector,
		&s.CurrentPrice, &s.MarketCap,
		&s.PERatio, &s.PBRatio, &s.DividendYield, &s.PayoutRatio, &s.DebtToEBITDA, &s.ROE, &s.NetMargin,
		&s.DividendCAGR5Y, &s.BazinPrice, &s.GrahamMargin,
		&s.ValueScore, &s.IncomeScore, &s.QualityScore, &s.FinalScore,
		&s.IsQualified, &s.DataSource, &s.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSnapshots(rows pgx.Rows) ([]*contracts.StockSnapshot, error) {
	snapshots := make([]*contracts.StockSnapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate stocks: %w", rows.Err())
	}
	return snapshots, nil
}
