package domain

import (
	"time"

	"github.com/google/uuid"
)

// FancyMarket represents a session (threshold) market scoped to one match.
// Wagers reference it by id and encode their claim as "ABOVE n" / "BELOW n".
// Suspended and settled are always flipped together at declaration so no
// further wagers can be placed against a declared result.
type FancyMarket struct {
	ID          uuid.UUID `json:"id"`
	MatchID     uuid.UUID `json:"match_id"`
	Name        string    `json:"name"`
	NoValue     int       `json:"no_value"`
	YesValue    int       `json:"yes_value"`
	Suspended   bool      `json:"suspended"`
	Active      bool      `json:"active"`
	Settled     bool      `json:"settled"`
	ResultValue *int      `json:"result_value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
