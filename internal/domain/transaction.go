package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates ledger entry types.
type TransactionType string

const (
	TxWagerStake     TransactionType = "wager_stake"
	TxWagerWin       TransactionType = "wager_win"
	TxWagerRefund    TransactionType = "wager_refund"
	TxSettlementLoss TransactionType = "settlement_loss"
	TxDeposit        TransactionType = "deposit"
	TxWithdrawal     TransactionType = "withdrawal"
)

// Transaction represents a ledger_entries row (append-only). BalanceBefore
// and BalanceAfter snapshot the account around the mutation; the latest
// entry's BalanceAfter must always equal the account's current balance.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  int64           `json:"balance_after"`
	WagerID       *uuid.UUID      `json:"wager_id,omitempty"`
	MatchID       *uuid.UUID      `json:"match_id,omitempty"`
	ExternalRef   *string         `json:"external_ref,omitempty"`
	Source        *string         `json:"source,omitempty"`
	ProcessedBy   string          `json:"processed_by"`
	Metadata      json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IdempotencyKey is the composite key used for ledger deduplication.
type IdempotencyKey struct {
	AccountID   uuid.UUID
	Source      string
	ExternalRef string
}

// PostLedgerEntryParams carries everything PostLedgerEntry needs to update
// the balance and append the entry in one transaction.
type PostLedgerEntryParams struct {
	AccountID    uuid.UUID
	Type         TransactionType
	Amount       int64
	BalanceDelta int64
	WagerID      *uuid.UUID
	MatchID      *uuid.UUID
	ExternalRef  *string
	Source       *string
	ProcessedBy  string
	Metadata     json.RawMessage
}

// CreditWinParams are the inputs for crediting a winning wager.
type CreditWinParams struct {
	AccountID   uuid.UUID
	Amount      int64
	WagerID     uuid.UUID
	MatchID     uuid.UUID
	ExternalRef string
	Source      string
	ProcessedBy string
	Metadata    json.RawMessage
}

// RefundStakeParams are the inputs for refunding a voided wager's stake.
// Amount must be the original stake, never the potential payout.
type RefundStakeParams struct {
	AccountID   uuid.UUID
	Amount      int64
	WagerID     uuid.UUID
	MatchID     uuid.UUID
	ExternalRef string
	Source      string
	ProcessedBy string
	Reason      string
}

// PlaceWagerParams are the inputs for debiting a stake at placement.
type PlaceWagerParams struct {
	AccountID   uuid.UUID
	Amount      int64
	WagerID     uuid.UUID
	MatchID     uuid.UUID
	ExternalRef string
	Source      string
	ProcessedBy string
	Metadata    json.RawMessage
}

// CommandResult is what every ledger command returns.
type CommandResult struct {
	Transaction *Transaction  `json:"transaction"`
	Account     *Account      `json:"account"`
	Idempotent  bool          `json:"idempotent"`
	Events      []OutboxDraft `json:"-"`
}
