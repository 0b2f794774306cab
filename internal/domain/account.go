package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents an accounts row. Balance is integer minor units
// (numeric(15,0) in Postgres). AgentID is the referring agent used as the
// entry point of the commission cascade, nil for unreferred accounts.
type Account struct {
	ID        uuid.UUID  `json:"id"`
	Balance   int64      `json:"balance"`
	Currency  string     `json:"currency"`
	AgentID   *uuid.UUID `json:"agent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
