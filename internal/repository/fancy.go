package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/crickbet/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fancyRepo struct{}

// NewFancyRepository returns a pgx-backed FancyRepository.
func NewFancyRepository() FancyRepository {
	return &fancyRepo{}
}

const fancyColumns = `id, match_id, name, no_value, yes_value, suspended, active, settled, result_value, created_at, updated_at`

func (r *fancyRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.FancyMarket, error) {
	row := db.QueryRow(ctx, `SELECT `+fancyColumns+` FROM fancy_markets WHERE id = $1`, id)
	return scanFancy(row)
}

func (r *fancyRepo) ListStaleUnsettled(ctx context.Context, db DBTX, cutoff time.Time) ([]domain.FancyMarket, error) {
	rows, err := db.Query(ctx, `
		SELECT f.`+fancyJoinColumns()+`
		FROM fancy_markets f
		JOIN matches m ON m.id = f.match_id
		WHERE f.settled = false AND m.status = 'completed' AND m.ends_at < $1
		ORDER BY m.ends_at ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query stale fancy markets: %w", err)
	}
	return collectFancies(rows)
}

func (r *fancyRepo) ListDeclaredWithPending(ctx context.Context, db DBTX) ([]domain.FancyMarket, error) {
	rows, err := db.Query(ctx, `
		SELECT f.`+fancyJoinColumns()+`
		FROM fancy_markets f
		WHERE f.settled = true
		  AND EXISTS (SELECT 1 FROM wagers w WHERE w.fancy_market_id = f.id AND w.status = 'pending')
		ORDER BY f.updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query declared fancy markets with pending wagers: %w", err)
	}
	return collectFancies(rows)
}

func collectFancies(rows pgx.Rows) ([]domain.FancyMarket, error) {
	defer rows.Close()

	var markets []domain.FancyMarket
	for rows.Next() {
		var f domain.FancyMarket
		if err := rows.Scan(&f.ID, &f.MatchID, &f.Name, &f.NoValue, &f.YesValue,
			&f.Suspended, &f.Active, &f.Settled, &f.ResultValue, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fancy row: %w", err)
		}
		markets = append(markets, f)
	}
	return markets, rows.Err()
}

// Declare flips suspended and settled together with the result value so the
// market cannot take further wagers after declaration.
func (r *fancyRepo) Declare(ctx context.Context, db DBTX, id uuid.UUID, result *int) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE fancy_markets
		SET result_value = $2, suspended = true, active = false, settled = true, updated_at = now()
		WHERE id = $1 AND settled = false`, id, result)
	if err != nil {
		return false, fmt.Errorf("declare fancy market: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func fancyJoinColumns() string {
	return `id, f.match_id, f.name, f.no_value, f.yes_value, f.suspended, f.active, f.settled, f.result_value, f.created_at, f.updated_at`
}

func scanFancy(row pgx.Row) (*domain.FancyMarket, error) {
	var f domain.FancyMarket
	err := row.Scan(&f.ID, &f.MatchID, &f.Name, &f.NoValue, &f.YesValue,
		&f.Suspended, &f.Active, &f.Settled, &f.ResultValue, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan fancy market: %w", err)
	}
	return &f, nil
}
