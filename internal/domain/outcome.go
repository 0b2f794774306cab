package domain

import "fmt"

// OutcomeKind classifies a canonical, source-agnostic match result.
type OutcomeKind string

const (
	// OutcomeWinner — a definitive winner, optionally with a typed margin.
	OutcomeWinner OutcomeKind = "winner"
	// OutcomeDraw — match drawn; winner becomes the DRAW sentinel.
	OutcomeDraw OutcomeKind = "draw"
	// OutcomeTie — tied with no tiebreak; settles like a void (refund all).
	OutcomeTie OutcomeKind = "tie"
	// OutcomeNoResult — abandoned / no result; all stakes are refunded.
	OutcomeNoResult OutcomeKind = "no_result"
)

// WinMargin is the typed margin attached to a definitive winner,
// e.g. "by 7 wickets" or "by an innings and 46 runs".
type WinMargin struct {
	Type  WinType `json:"type"`
	Value int     `json:"value"`
	DLS   bool    `json:"dls"`
}

// Outcome is the normalized result of a match. Resolver sources produce it;
// the applier consumes it. A nil *Outcome from the resolver means the result
// is not yet available — that is not an error.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Winner string      `json:"winner,omitempty"`
	Margin *WinMargin  `json:"margin,omitempty"`
	Source string      `json:"source,omitempty"`
	Raw    string      `json:"raw,omitempty"`
}

// RefundsAll reports whether the outcome refunds every pending stake.
func (o *Outcome) RefundsAll() bool {
	return o.Kind == OutcomeNoResult || o.Kind == OutcomeTie
}

// CanonicalWinner returns the winner string to record on the match.
func (o *Outcome) CanonicalWinner() string {
	if o.Kind == OutcomeDraw {
		return WinnerDraw
	}
	return o.Winner
}

func (o *Outcome) String() string {
	switch o.Kind {
	case OutcomeWinner:
		if o.Margin != nil {
			return fmt.Sprintf("%s won by %d %s", o.Winner, o.Margin.Value, o.Margin.Type)
		}
		return fmt.Sprintf("%s won", o.Winner)
	default:
		return string(o.Kind)
	}
}
