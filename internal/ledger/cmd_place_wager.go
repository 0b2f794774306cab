package ledger

import (
	"context"

	"github.com/crickbet/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecutePlaceWager debits the stake from the account at placement time.
// Fails with a conflict when the balance cannot cover the stake; the check
// runs under the account row lock so concurrent placements cannot overdraw.
func (e *Engine) ExecutePlaceWager(ctx context.Context, tx pgx.Tx, params domain.PlaceWagerParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	account, err := e.LockAccountForUpdate(ctx, tx, params.AccountID)
	if err != nil {
		return nil, err
	}

	existing, err := e.FindExistingTransaction(ctx, tx, domain.IdempotencyKey{
		AccountID:   params.AccountID,
		Source:      params.Source,
		ExternalRef: params.ExternalRef,
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.CommandResult{Transaction: existing, Account: account, Idempotent: true}, nil
	}

	if account.Balance < params.Amount {
		return nil, domain.ErrConflict("insufficient balance for stake")
	}

	entry, updated, err := e.PostLedgerEntry(ctx, tx, account.Balance, domain.PostLedgerEntryParams{
		AccountID:    params.AccountID,
		Type:         domain.TxWagerStake,
		Amount:       params.Amount,
		BalanceDelta: -params.Amount,
		WagerID:      uuidPtr(params.WagerID),
		MatchID:      uuidPtr(params.MatchID),
		ExternalRef:  strPtr(params.ExternalRef),
		Source:       strPtr(params.Source),
		ProcessedBy:  params.ProcessedBy,
		Metadata:     ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, domain.ErrLedgerIntegrity("place wager debit failed", err)
	}

	return &domain.CommandResult{Transaction: entry, Account: updated}, nil
}
