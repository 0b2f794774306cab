package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const ledgerColumns = `id, account_id, type, amount, balance_before, balance_after,
	wager_id, match_id, external_ref, source, processed_by, metadata, created_at`

func (r *transactionRepo) FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE account_id = $1 AND source = $2 AND external_ref = $3`,
		key.AccountID, key.Source, key.ExternalRef)
	return scanTransaction(row)
}

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, before, after int64) (*domain.Transaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO ledger_entries
		  (account_id, type, amount, balance_before, balance_after,
		   wager_id, match_id, external_ref, source, processed_by, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+ledgerColumns,
		params.AccountID,
		string(params.Type),
		infra.Int64ToNumeric(params.Amount),
		infra.Int64ToNumeric(before),
		infra.Int64ToNumeric(after),
		params.WagerID,
		params.MatchID,
		params.ExternalRef,
		params.Source,
		params.ProcessedBy,
		meta,
	)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *transactionRepo) ListByWager(ctx context.Context, db DBTX, wagerID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE wager_id = $1
		ORDER BY created_at ASC`, wagerID)
	if err != nil {
		return nil, fmt.Errorf("query wager ledger entries: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionValues(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query account ledger entries: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionValues(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	tx, err := scanTransactionValues(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return tx, err
}

func scanTransactionValues(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountNum, beforeNum, afterNum pgtype.Numeric
	err := row.Scan(
		&tx.ID, &tx.AccountID, &tx.Type,
		&amountNum, &beforeNum, &afterNum,
		&tx.WagerID, &tx.MatchID, &tx.ExternalRef, &tx.Source,
		&tx.ProcessedBy, &tx.Metadata, &tx.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}

	var convErr error
	tx.Amount, convErr = infra.NumericToInt64(amountNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert amount: %w", convErr)
	}
	tx.BalanceBefore, convErr = infra.NumericToInt64(beforeNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance_before: %w", convErr)
	}
	tx.BalanceAfter, convErr = infra.NumericToInt64(afterNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance_after: %w", convErr)
	}

	return &tx, nil
}
