package ledger

import (
	"context"

	"github.com/crickbet/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteCreditWin credits a winning wager's payout to the account. The
// (account, source, external_ref) idempotency key makes the credit
// at-most-once: a duplicate call returns the original entry untouched.
//
// Runs inside the caller's transaction so the credit commits or rolls back
// together with the wager status flip.
func (e *Engine) ExecuteCreditWin(ctx context.Context, tx pgx.Tx, params domain.CreditWinParams) (*domain.CommandResult, error) {
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

	entry, updated, err := e.PostLedgerEntry(ctx, tx, account.Balance, domain.PostLedgerEntryParams{
		AccountID:    params.AccountID,
		Type:         domain.TxWagerWin,
		Amount:       params.Amount,
		BalanceDelta: params.Amount,
		WagerID:      uuidPtr(params.WagerID),
		MatchID:      uuidPtr(params.MatchID),
		ExternalRef:  strPtr(params.ExternalRef),
		Source:       strPtr(params.Source),
		ProcessedBy:  params.ProcessedBy,
		Metadata:     ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, domain.ErrLedgerIntegrity("credit win failed", err)
	}

	return &domain.CommandResult{Transaction: entry, Account: updated}, nil
}
