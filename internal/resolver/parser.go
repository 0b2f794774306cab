package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crickbet/platform/internal/domain"
)

// parseRule is one ordered (predicate, extractor) rule. Rules are evaluated
// top to bottom; the first match wins. extract receives the raw status text
// and the two stored participant names so it can canonicalize the winner.
type parseRule struct {
	name    string
	extract func(status, team1, team2 string) (*domain.Outcome, bool)
}

var (
	reInnings  = regexp.MustCompile(`(?i)^(.+?)\s+won\s+by\s+an\s+innings\s+and\s+(\d+)\s+runs?\b`)
	reByMargin = regexp.MustCompile(`(?i)^(.+?)\s+won\s+by\s+(\d+)\s+(runs?|wickets?)\b`)
	reSuper    = regexp.MustCompile(`(?i)^(.+?)\s+won\s+(?:by\s+a\s+super\s+over|the\s+super\s+over)\b`)
	reGeneric  = regexp.MustCompile(`(?i)^(.+?)\s+won\b`)
	reDLS      = regexp.MustCompile(`(?i)\b(dls|d/l|duckworth)`)
)

// parseRules is the full ordered rule set. Specific forms come before the
// generic "<X> won" so the margin is never lost, and terminal non-winner
// states come first so "no result" can never be mistaken for a winner.
var parseRules = []parseRule{
	{
		name: "no-result",
		extract: func(status, _, _ string) (*domain.Outcome, bool) {
			s := strings.ToLower(status)
			if strings.Contains(s, "no result") || strings.Contains(s, "abandon") || strings.Contains(s, "called off") {
				return &domain.Outcome{Kind: domain.OutcomeNoResult}, true
			}
			return nil, false
		},
	},
	{
		name: "drawn",
		extract: func(status, _, _ string) (*domain.Outcome, bool) {
			if strings.Contains(strings.ToLower(status), "drawn") {
				return &domain.Outcome{Kind: domain.OutcomeDraw, Winner: domain.WinnerDraw}, true
			}
			return nil, false
		},
	},
	{
		// Tie with a super-over tiebreak is a winner; that case is caught by
		// the super-over rule via "X won the super over" phrasing, so plain
		// "tied" here means no tiebreak.
		name: "tied",
		extract: func(status, _, _ string) (*domain.Outcome, bool) {
			s := strings.ToLower(status)
			if strings.Contains(s, "tied") && !reSuper.MatchString(status) {
				return &domain.Outcome{Kind: domain.OutcomeTie}, true
			}
			return nil, false
		},
	},
	{
		name: "won-by-innings",
		extract: func(status, team1, team2 string) (*domain.Outcome, bool) {
			m := reInnings.FindStringSubmatch(status)
			if m == nil {
				return nil, false
			}
			winner, ok := PickTeam(m[1], team1, team2)
			if !ok {
				return nil, false
			}
			runs, _ := strconv.Atoi(m[2])
			return &domain.Outcome{
				Kind:   domain.OutcomeWinner,
				Winner: winner,
				Margin: &domain.WinMargin{Type: domain.WinByInnings, Value: runs, DLS: reDLS.MatchString(status)},
			}, true
		},
	},
	{
		name: "won-by-margin",
		extract: func(status, team1, team2 string) (*domain.Outcome, bool) {
			m := reByMargin.FindStringSubmatch(status)
			if m == nil {
				return nil, false
			}
			winner, ok := PickTeam(m[1], team1, team2)
			if !ok {
				return nil, false
			}
			value, _ := strconv.Atoi(m[2])
			winType := domain.WinByRuns
			if strings.HasPrefix(strings.ToLower(m[3]), "wicket") {
				winType = domain.WinByWickets
			}
			return &domain.Outcome{
				Kind:   domain.OutcomeWinner,
				Winner: winner,
				Margin: &domain.WinMargin{Type: winType, Value: value, DLS: reDLS.MatchString(status)},
			}, true
		},
	},
	{
		name: "won-super-over",
		extract: func(status, team1, team2 string) (*domain.Outcome, bool) {
			m := reSuper.FindStringSubmatch(status)
			if m == nil {
				return nil, false
			}
			winner, ok := PickTeam(m[1], team1, team2)
			if !ok {
				return nil, false
			}
			return &domain.Outcome{
				Kind:   domain.OutcomeWinner,
				Winner: winner,
				Margin: &domain.WinMargin{Type: domain.WinBySuperOver, Value: 1},
			}, true
		},
	},
	{
		name: "won-generic",
		extract: func(status, team1, team2 string) (*domain.Outcome, bool) {
			m := reGeneric.FindStringSubmatch(status)
			if m == nil {
				return nil, false
			}
			winner, ok := PickTeam(m[1], team1, team2)
			if !ok {
				return nil, false
			}
			return &domain.Outcome{Kind: domain.OutcomeWinner, Winner: winner}, true
		},
	},
}

// ParseResult runs the ordered rule set over a free-text result string.
// The second return is false when no rule matched — the unparsed case is a
// first-class value, never an error, and never a guess.
func ParseResult(status, team1, team2 string) (*domain.Outcome, bool) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, false
	}
	for _, rule := range parseRules {
		if outcome, ok := rule.extract(status, team1, team2); ok {
			outcome.Raw = status
			return outcome, true
		}
	}
	return nil, false
}
