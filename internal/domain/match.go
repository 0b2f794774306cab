package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus tracks the lifecycle of a match.
type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// WinnerDraw is the sentinel winner recorded for drawn matches. Wagers with
// selection "DRAW" win against it through the ordinary winner-matching path.
const WinnerDraw = "DRAW"

// WinType classifies the margin of a cricket result.
type WinType string

const (
	WinByRuns      WinType = "runs"
	WinByWickets   WinType = "wickets"
	WinByInnings   WinType = "innings"
	WinBySuperOver WinType = "super_over"
)

// Match represents a matches row. Created by ingestion; score producers and
// the settlement engine are the only writers afterwards.
type Match struct {
	ID        uuid.UUID   `json:"id"`
	Team1     string      `json:"team1"`
	Team2     string      `json:"team2"`
	Status    MatchStatus `json:"status"`
	Winner    *string     `json:"winner,omitempty"`
	WinType   *WinType    `json:"win_type,omitempty"`
	WinMargin *int        `json:"win_margin,omitempty"`
	IsSettled bool        `json:"is_settled"`
	EndsAt    time.Time   `json:"ends_at"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// HasWinner reports whether a canonical winner has been recorded.
func (m *Match) HasWinner() bool {
	return m.Winner != nil && *m.Winner != ""
}
