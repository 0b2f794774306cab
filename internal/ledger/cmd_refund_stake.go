package ledger

import (
	"context"

	"github.com/crickbet/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteRefundStake returns a voided wager's original stake to the account.
// Amount must be the stake, never the potential payout. Idempotent on
// (account, source, external_ref).
func (e *Engine) ExecuteRefundStake(ctx context.Context, tx pgx.Tx, params domain.RefundStakeParams) (*domain.CommandResult, error) {
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

	meta := mergeMeta(nil, map[string]interface{}{"reason": params.Reason})

	entry, updated, err := e.PostLedgerEntry(ctx, tx, account.Balance, domain.PostLedgerEntryParams{
		AccountID:    params.AccountID,
		Type:         domain.TxWagerRefund,
		Amount:       params.Amount,
		BalanceDelta: params.Amount,
		WagerID:      uuidPtr(params.WagerID),
		MatchID:      uuidPtr(params.MatchID),
		ExternalRef:  strPtr(params.ExternalRef),
		Source:       strPtr(params.Source),
		ProcessedBy:  params.ProcessedBy,
		Metadata:     meta,
	})
	if err != nil {
		return nil, domain.ErrLedgerIntegrity("refund stake failed", err)
	}

	return &domain.CommandResult{Transaction: entry, Account: updated}, nil
}
