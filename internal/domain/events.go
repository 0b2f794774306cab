package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventTransactionPosted EventType = "settle.ledger.transaction.posted"
	EventWagerSettled      EventType = "settle.wager.settled"
	EventMatchStatus       EventType = "settle.match.status.changed"
	EventMatchSettled      EventType = "settle.match.settled"
	EventFancyDeclared     EventType = "settle.fancy.declared"
	EventCommissionPaid    EventType = "settle.commission.paid"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateMatch  AggregateType = "match"
	AggregateWager  AggregateType = "wager"
	AggregateLedger AggregateType = "ledger"
	AggregateFancy  AggregateType = "fancy_market"
)

// OutboxDraft is the payload written to the event_outbox table. Drafts are
// inserted inside the same store transaction as the mutation they describe,
// so a broadcast failure can never affect ledger correctness.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewTransactionPostedEvent creates the standard ledger event for an entry.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	payload, _ := json.Marshal(tx)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLedger,
		AggregateID:   tx.AccountID.String(),
		EventType:     EventTransactionPosted,
		PartitionKey:  tx.AccountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWagerSettledEvent announces a wager leaving PENDING.
func NewWagerSettledEvent(wagerID, matchID uuid.UUID, status WagerStatus, payout int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"wager_id": wagerID.String(),
		"match_id": matchID.String(),
		"status":   string(status),
		"payout":   payout,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWager,
		AggregateID:   wagerID.String(),
		EventType:     EventWagerSettled,
		PartitionKey:  matchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewMatchSettledEvent announces a match reaching its terminal settled state.
func NewMatchSettledEvent(matchID uuid.UUID, winner string) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"match_id": matchID.String(),
		"winner":   winner,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMatch,
		AggregateID:   matchID.String(),
		EventType:     EventMatchSettled,
		PartitionKey:  matchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewMatchStatusEvent announces a status or winner change on a match.
func NewMatchStatusEvent(matchID uuid.UUID, status MatchStatus, winner string) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"match_id": matchID.String(),
		"status":   string(status),
		"winner":   winner,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMatch,
		AggregateID:   matchID.String(),
		EventType:     EventMatchStatus,
		PartitionKey:  matchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewFancyDeclaredEvent announces a fancy market result declaration.
func NewFancyDeclaredEvent(marketID, matchID uuid.UUID, result int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"market_id": marketID.String(),
		"match_id":  matchID.String(),
		"result":    result,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateFancy,
		AggregateID:   marketID.String(),
		EventType:     EventFancyDeclared,
		PartitionKey:  matchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
