package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentType is the hierarchy tier of an agent. The chain is capped at
// three levels: AGENT -> MASTER -> SUPER_MASTER.
type AgentType string

const (
	AgentTierAgent       AgentType = "agent"
	AgentTierMaster      AgentType = "master"
	AgentTierSuperMaster AgentType = "super_master"
)

// MaxCommissionTiers bounds the parent-pointer walk even on malformed data.
const MaxCommissionTiers = 3

// Agent represents an agents row. ParentID points one tier up, nil at the
// top of the chain. CommissionRate is a percentage (e.g. 2.5 = 2.5%).
type Agent struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Type            AgentType       `json:"type"`
	ParentID        *uuid.UUID      `json:"parent_id,omitempty"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	CommissionTotal int64           `json:"commission_total"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CommissionRecord is the append-only record of one tier's payout for one
// winning wager. Amount = BasisAmount * Rate / 100, truncated to minor units.
type CommissionRecord struct {
	ID          uuid.UUID       `json:"id"`
	AgentID     uuid.UUID       `json:"agent_id"`
	WagerID     uuid.UUID       `json:"wager_id"`
	Tier        int             `json:"tier"`
	Rate        decimal.Decimal `json:"rate"`
	BasisAmount int64           `json:"basis_amount"`
	Amount      int64           `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CommissionAmount computes one tier's payout from the win amount.
func CommissionAmount(winAmount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(winAmount).Mul(rate).Div(decimal.NewFromInt(100)).IntPart()
}
