package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/crickbet/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

const matchColumns = `id, team1, team2, status, winner, win_type, win_margin, is_settled, ends_at, created_at, updated_at`

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error) {
	row := db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *matchRepo) ListUnresolved(ctx context.Context, db DBTX) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status = 'completed' AND winner IS NULL AND is_settled = false
		ORDER BY ends_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query unresolved matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *matchRepo) ListResolvedUnsettled(ctx context.Context, db DBTX) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status = 'completed' AND winner IS NOT NULL AND is_settled = false
		ORDER BY ends_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query resolved unsettled matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *matchRepo) ListStaleUnresolved(ctx context.Context, db DBTX, cutoff time.Time) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status = 'completed' AND winner IS NULL AND is_settled = false AND ends_at < $1
		ORDER BY ends_at ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query stale matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// RecordWinner is conditional on winner still being NULL so two racing sweeps
// cannot both claim the write.
func (r *matchRepo) RecordWinner(ctx context.Context, db DBTX, id uuid.UUID, winner string, winType *domain.WinType, margin *int) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET winner = $2, win_type = $3, win_margin = $4, updated_at = now()
		WHERE id = $1 AND winner IS NULL AND is_settled = false`,
		id, winner, winType, margin)
	if err != nil {
		return false, fmt.Errorf("record winner: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *matchRepo) MarkSettled(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches SET is_settled = true, updated_at = now()
		WHERE id = $1 AND is_settled = false`, id)
	if err != nil {
		return false, fmt.Errorf("mark match settled: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.Team1, &m.Team2, &m.Status, &m.Winner, &m.WinType,
		&m.WinMargin, &m.IsSettled, &m.EndsAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return &m, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.Team1, &m.Team2, &m.Status, &m.Winner, &m.WinType,
			&m.WinMargin, &m.IsSettled, &m.EndsAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
