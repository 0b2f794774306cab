package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/infra"
	"github.com/crickbet/platform/internal/repository"
	"github.com/google/uuid"
)

// Cascade pays commission up the agent referral chain for winning wagers.
// No commission is ever paid on lost or void wagers.
type Cascade struct {
	agents repository.AgentRepository
	outbox repository.OutboxRepository
	logger *slog.Logger
}

// NewCascade creates a commission cascade.
func NewCascade(agents repository.AgentRepository, outbox repository.OutboxRepository, logger *slog.Logger) *Cascade {
	return &Cascade{agents: agents, outbox: outbox, logger: logger}
}

// Distribute walks at most domain.MaxCommissionTiers agents up from the
// wager owner's referring agent and writes one commission record per tier,
// each computed as winAmount * rate / 100 truncated to minor units. Runs in
// the same transaction as the win mutation so a failed tier rolls the whole
// wager's settlement back for retry.
func (c *Cascade) Distribute(ctx context.Context, db repository.DBTX, wager *domain.Wager, startAgentID uuid.UUID, winAmount int64) ([]domain.CommissionRecord, error) {
	chain, err := c.agents.Chain(ctx, db, startAgentID)
	if err != nil {
		return nil, fmt.Errorf("resolve agent chain: %w", err)
	}

	records := make([]domain.CommissionRecord, 0, len(chain))
	for tier, agent := range chain {
		rec := domain.CommissionRecord{
			ID:          uuid.New(),
			AgentID:     agent.ID,
			WagerID:     wager.ID,
			Tier:        tier + 1,
			Rate:        agent.CommissionRate,
			BasisAmount: winAmount,
			Amount:      domain.CommissionAmount(winAmount, agent.CommissionRate),
		}
		if err := c.agents.RecordCommission(ctx, db, &rec); err != nil {
			return nil, fmt.Errorf("record tier %d commission: %w", rec.Tier, err)
		}

		if err := c.outbox.Insert(ctx, db, newCommissionEvent(&rec)); err != nil {
			return nil, fmt.Errorf("insert commission event: %w", err)
		}

		infra.CommissionsPaid.Inc()
		records = append(records, rec)
	}
	return records, nil
}

func newCommissionEvent(rec *domain.CommissionRecord) domain.OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"commission_id": rec.ID.String(),
		"agent_id":      rec.AgentID.String(),
		"wager_id":      rec.WagerID.String(),
		"tier":          rec.Tier,
		"amount":        rec.Amount,
	})
	return domain.OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: domain.AggregateWager,
		AggregateID:   rec.WagerID.String(),
		EventType:     domain.EventCommissionPaid,
		PartitionKey:  rec.AgentID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
