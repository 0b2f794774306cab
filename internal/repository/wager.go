package repository

import (
	"context"
	"fmt"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type wagerRepo struct{}

// NewWagerRepository returns a pgx-backed WagerRepository.
func NewWagerRepository() WagerRepository {
	return &wagerRepo{}
}

const wagerColumns = `id, account_id, match_id, fancy_market_id, selection, stake, odds,
	potential_payout, status, actual_payout, placement_tx_id, placed_at, settled_at`

func (r *wagerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Wager, error) {
	row := db.QueryRow(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1`, id)
	return scanWager(row)
}

func (r *wagerRepo) Insert(ctx context.Context, db DBTX, w *domain.Wager) error {
	_, err := db.Exec(ctx, `
		INSERT INTO wagers (id, account_id, match_id, fancy_market_id, selection, stake, odds,
			potential_payout, status, actual_payout, placement_tx_id, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		w.ID, w.AccountID, w.MatchID, w.FancyMarketID, w.Selection,
		infra.Int64ToNumeric(w.Stake), w.Odds, infra.Int64ToNumeric(w.PotentialPayout),
		string(w.Status), infra.Int64ToNumeric(w.ActualPayout), w.PlacementTxID, w.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert wager: %w", err)
	}
	return nil
}

func (r *wagerRepo) ListPendingByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE match_id = $1 AND fancy_market_id IS NULL AND status = 'pending'
		ORDER BY placed_at ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query pending wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (r *wagerRepo) ListAllPendingByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE match_id = $1 AND status = 'pending'
		ORDER BY placed_at ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query pending wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (r *wagerRepo) ListPendingByFancy(ctx context.Context, db DBTX, marketID uuid.UUID) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE fancy_market_id = $1 AND status = 'pending'
		ORDER BY placed_at ASC`, marketID)
	if err != nil {
		return nil, fmt.Errorf("query pending fancy wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (r *wagerRepo) CountPendingByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRow(ctx,
		`SELECT count(*) FROM wagers WHERE match_id = $1 AND status = 'pending'`, matchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending wagers: %w", err)
	}
	return n, nil
}

func (r *wagerRepo) LockForSettle(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wager, error) {
	row := tx.QueryRow(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1 FOR UPDATE`, id)
	return scanWager(row)
}

// MarkSettled is conditional on status = 'pending'; a concurrent sweep that
// already settled the row makes this a no-op rather than a double write.
func (r *wagerRepo) MarkSettled(ctx context.Context, db DBTX, id uuid.UUID, status domain.WagerStatus, payout int64) error {
	tag, err := db.Exec(ctx, `
		UPDATE wagers SET status = $2, actual_payout = $3, settled_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, string(status), infra.Int64ToNumeric(payout))
	if err != nil {
		return fmt.Errorf("mark wager settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySettled("wager", id.String())
	}
	return nil
}

func scanWager(row pgx.Row) (*domain.Wager, error) {
	var w domain.Wager
	var stakeNum, potentialNum, actualNum pgtype.Numeric
	err := row.Scan(&w.ID, &w.AccountID, &w.MatchID, &w.FancyMarketID, &w.Selection,
		&stakeNum, &w.Odds, &potentialNum, &w.Status, &actualNum,
		&w.PlacementTxID, &w.PlacedAt, &w.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wager: %w", err)
	}

	var convErr error
	w.Stake, convErr = infra.NumericToInt64(stakeNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert stake: %w", convErr)
	}
	w.PotentialPayout, convErr = infra.NumericToInt64(potentialNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert potential_payout: %w", convErr)
	}
	w.ActualPayout, convErr = infra.NumericToInt64(actualNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert actual_payout: %w", convErr)
	}

	return &w, nil
}

func collectWagers(rows pgx.Rows) ([]domain.Wager, error) {
	var wagers []domain.Wager
	for rows.Next() {
		var w domain.Wager
		var stakeNum, potentialNum, actualNum pgtype.Numeric
		err := rows.Scan(&w.ID, &w.AccountID, &w.MatchID, &w.FancyMarketID, &w.Selection,
			&stakeNum, &w.Odds, &potentialNum, &w.Status, &actualNum,
			&w.PlacementTxID, &w.PlacedAt, &w.SettledAt)
		if err != nil {
			return nil, fmt.Errorf("scan wager row: %w", err)
		}
		var convErr error
		w.Stake, convErr = infra.NumericToInt64(stakeNum)
		if convErr != nil {
			return nil, convErr
		}
		w.PotentialPayout, convErr = infra.NumericToInt64(potentialNum)
		if convErr != nil {
			return nil, convErr
		}
		w.ActualPayout, convErr = infra.NumericToInt64(actualNum)
		if convErr != nil {
			return nil, convErr
		}
		wagers = append(wagers, w)
	}
	return wagers, rows.Err()
}
