package domain

import (
	"time"

	"github.com/google/uuid"
)

// WagerStatus tracks the lifecycle of a wager. The transition out of
// PENDING is one-way and happens exactly once.
type WagerStatus string

const (
	WagerPending   WagerStatus = "pending"
	WagerWon       WagerStatus = "won"
	WagerLost      WagerStatus = "lost"
	WagerVoid      WagerStatus = "void"
	WagerCancelled WagerStatus = "cancelled"
)

// Wager represents a wagers row. Stake, odds and potential payout are in
// minor units / integer-scaled odds (175 == 1.75). ActualPayout stays 0
// unless the wager is won.
type Wager struct {
	ID              uuid.UUID   `json:"id"`
	AccountID       uuid.UUID   `json:"account_id"`
	MatchID         uuid.UUID   `json:"match_id"`
	FancyMarketID   *uuid.UUID  `json:"fancy_market_id,omitempty"`
	Selection       string      `json:"selection"`
	Stake           int64       `json:"stake"`
	Odds            int         `json:"odds"`
	PotentialPayout int64       `json:"potential_payout"`
	Status          WagerStatus `json:"status"`
	ActualPayout    int64       `json:"actual_payout"`
	PlacementTxID   *uuid.UUID  `json:"placement_tx_id,omitempty"`
	PlacedAt        time.Time   `json:"placed_at"`
	SettledAt       *time.Time  `json:"settled_at,omitempty"`
}

// IsFancy reports whether the wager belongs to a fancy (session) market.
func (w *Wager) IsFancy() bool { return w.FancyMarketID != nil }

// PotentialPayoutFor computes the payout locked in at placement time.
func PotentialPayoutFor(stake int64, odds int) int64 {
	return stake * int64(odds) / 100
}
