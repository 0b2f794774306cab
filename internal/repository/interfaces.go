package repository

import (
	"context"
	"time"

	"github.com/crickbet/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// MatchRepository provides access to matches.
type MatchRepository interface {
	// FindByID returns a match by ID, (nil, nil) if missing.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error)

	// ListUnresolved returns completed matches with no canonical winner and
	// is_settled = false.
	ListUnresolved(ctx context.Context, db DBTX) ([]domain.Match, error)

	// ListResolvedUnsettled returns completed matches that have a winner
	// recorded but are not yet marked settled.
	ListResolvedUnsettled(ctx context.Context, db DBTX) ([]domain.Match, error)

	// ListStaleUnresolved returns completed matches with no winner whose end
	// time is older than the cutoff and that are not settled.
	ListStaleUnresolved(ctx context.Context, db DBTX, cutoff time.Time) ([]domain.Match, error)

	// RecordWinner sets the canonical winner and margin on an unresolved
	// match. No-ops (returns false) if a winner is already recorded.
	RecordWinner(ctx context.Context, db DBTX, id uuid.UUID, winner string, winType *domain.WinType, margin *int) (bool, error)

	// MarkSettled flips is_settled. Returns false if it was already set.
	MarkSettled(ctx context.Context, db DBTX, id uuid.UUID) (bool, error)
}

// WagerRepository provides access to wagers.
type WagerRepository interface {
	// FindByID returns a wager by ID, (nil, nil) if missing.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Wager, error)

	// Insert creates a new wager row.
	Insert(ctx context.Context, db DBTX, w *domain.Wager) error

	// ListPendingByMatch returns pending primary-market wagers for a match.
	ListPendingByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Wager, error)

	// ListAllPendingByMatch returns every pending wager on a match, fancy
	// included. The void backstop uses this.
	ListAllPendingByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Wager, error)

	// ListPendingByFancy returns pending wagers on a fancy market.
	ListPendingByFancy(ctx context.Context, db DBTX, marketID uuid.UUID) ([]domain.Wager, error)

	// CountPendingByMatch counts wagers still pending on a match.
	CountPendingByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) (int, error)

	// LockForSettle re-reads a wager with a row lock inside the settling
	// transaction. This re-check is the concurrency safeguard: a wager that
	// already left PENDING must be observed and skipped, never re-applied.
	LockForSettle(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wager, error)

	// MarkSettled transitions a pending wager to its final status and payout.
	MarkSettled(ctx context.Context, db DBTX, id uuid.UUID, status domain.WagerStatus, payout int64) error
}

// FancyRepository provides access to fancy_markets.
type FancyRepository interface {
	// FindByID returns a fancy market, (nil, nil) if missing.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.FancyMarket, error)

	// ListStaleUnsettled returns unsettled markets on completed matches whose
	// end time is older than the cutoff.
	ListStaleUnsettled(ctx context.Context, db DBTX, cutoff time.Time) ([]domain.FancyMarket, error)

	// ListDeclaredWithPending returns declared markets that still carry
	// pending wagers, left behind by a failed settlement pass.
	ListDeclaredWithPending(ctx context.Context, db DBTX) ([]domain.FancyMarket, error)

	// Declare records the result value and flips suspended+settled together.
	// Returns false if the market was already settled.
	Declare(ctx context.Context, db DBTX, id uuid.UUID, result *int) (bool, error)
}

// AccountRepository provides access to accounts.
type AccountRepository interface {
	// FindByID returns an account by ID, (nil, nil) if missing.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE).
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)

	// Create inserts a new account.
	Create(ctx context.Context, db DBTX, account *domain.Account) error

	// ApplyBalanceDelta atomically adjusts the balance with server-side
	// arithmetic and returns the updated account.
	ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, delta int64) (*domain.Account, error)
}

// TransactionRepository provides access to ledger_entries.
type TransactionRepository interface {
	// FindExisting checks the idempotency index for a duplicate entry.
	FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error)

	// Insert appends a ledger entry with before/after balance snapshots.
	Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, before, after int64) (*domain.Transaction, error)

	// FindByID returns a ledger entry by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error)

	// ListByWager returns all ledger entries caused by one wager.
	ListByWager(ctx context.Context, db DBTX, wagerID uuid.UUID) ([]domain.Transaction, error)

	// ListByAccount returns an account's entries oldest first. The ledger
	// auditor replays these against the account balance.
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID) ([]domain.Transaction, error)
}

// AgentRepository provides access to agents and commission records.
type AgentRepository interface {
	// FindByID returns an agent, (nil, nil) if missing.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Agent, error)

	// Chain walks parent pointers starting at the given agent, at most
	// domain.MaxCommissionTiers hops, even if the data is cyclic.
	Chain(ctx context.Context, db DBTX, startID uuid.UUID) ([]domain.Agent, error)

	// RecordCommission inserts one commission record and increments the
	// agent's running total in the same statement batch.
	RecordCommission(ctx context.Context, db DBTX, rec *domain.CommissionRecord) error

	// ListCommissionsByWager returns commission records for a wager.
	ListCommissionsByWager(ctx context.Context, db DBTX, wagerID uuid.UUID) ([]domain.CommissionRecord, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the caller's transaction).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished rows for the poller/consumer.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxRow, error)

	// MarkPublished stamps rows as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// OutboxRow is a persisted outbox draft plus its sequence ID.
type OutboxRow struct {
	SeqID int64
	domain.OutboxDraft
}
