package ledger

import (
	"context"
	"fmt"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine provides the 3 foundational ledger operations:
//  1. LockAccountForUpdate — row-level pessimistic lock
//  2. FindExistingTransaction — idempotency check
//  3. PostLedgerEntry — atomic balance update + append-only insert + outbox event
type Engine struct {
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		accounts:     accounts,
		transactions: transactions,
		outbox:       outbox,
	}
}

// LockAccountForUpdate acquires a row-level lock and returns the account.
// Must be called within a transaction.
func (e *Engine) LockAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Account, error) {
	account, err := e.accounts.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}
	return account, nil
}

// FindExistingTransaction checks the idempotency index for a duplicate entry.
// Returns nil if no duplicate found.
func (e *Engine) FindExistingTransaction(ctx context.Context, tx pgx.Tx, key domain.IdempotencyKey) (*domain.Transaction, error) {
	existing, err := e.transactions.FindExisting(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find existing transaction: %w", err)
	}
	return existing, nil
}

// PostLedgerEntry atomically updates the account balance and appends a
// ledger entry carrying the before/after snapshot. All commands delegate
// to this.
//
// Steps, all within the caller's transaction:
//  1. Apply the balance delta with server-side arithmetic
//  2. Insert the ledger entry with balance_before / balance_after
//  3. Insert the outbox event
//
// If any step fails the caller must roll back; a partially applied entry is
// a ledger integrity failure.
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, before int64, params domain.PostLedgerEntryParams) (*domain.Transaction, *domain.Account, error) {
	updated, err := e.accounts.ApplyBalanceDelta(ctx, tx, params.AccountID, params.BalanceDelta)
	if err != nil {
		return nil, nil, fmt.Errorf("apply balance delta: %w", err)
	}

	entry, err := e.transactions.Insert(ctx, tx, params, before, updated.Balance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	event := domain.NewTransactionPostedEvent(entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}
