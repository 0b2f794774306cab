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

type accountRepo struct{}

// NewAccountRepository returns a pgx-backed AccountRepository.
func NewAccountRepository() AccountRepository {
	return &accountRepo{}
}

func (r *accountRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT id, balance, currency, agent_id, created_at, updated_at
		FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *accountRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, balance, currency, agent_id, created_at, updated_at
		FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

func (r *accountRepo) Create(ctx context.Context, db DBTX, account *domain.Account) error {
	_, err := db.Exec(ctx, `
		INSERT INTO accounts (id, balance, currency, agent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, infra.Int64ToNumeric(account.Balance), account.Currency,
		account.AgentID, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// ApplyBalanceDelta uses server-side arithmetic so concurrent deltas compose.
func (r *accountRepo) ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, delta int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING id, balance, currency, agent_id, created_at, updated_at`,
		accountID, infra.Int64ToNumeric(delta))
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var balNum pgtype.Numeric
	err := row.Scan(&a.ID, &balNum, &a.Currency, &a.AgentID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	var convErr error
	a.Balance, convErr = infra.NumericToInt64(balNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance: %w", convErr)
	}
	return &a, nil
}
