package resolver

import (
	"testing"

	"github.com/crickbet/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultWinnerWithMargin(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		winner  string
		winType domain.WinType
		value   int
		dls     bool
	}{
		{"by wickets", "India won by 7 wickets", "India", domain.WinByWickets, 7, false},
		{"by runs", "Pakistan won by 23 runs", "Pakistan", domain.WinByRuns, 23, false},
		{"single run", "India won by 1 run", "India", domain.WinByRuns, 1, false},
		{"dls", "Pakistan won by 12 runs (DLS method)", "Pakistan", domain.WinByRuns, 12, true},
		{"abbreviated winner", "IND won by 5 wickets", "India", domain.WinByWickets, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, ok := ParseResult(tt.status, "India", "Pakistan")
			require.True(t, ok)
			assert.Equal(t, domain.OutcomeWinner, outcome.Kind)
			assert.Equal(t, tt.winner, outcome.Winner)
			require.NotNil(t, outcome.Margin)
			assert.Equal(t, tt.winType, outcome.Margin.Type)
			assert.Equal(t, tt.value, outcome.Margin.Value)
			assert.Equal(t, tt.dls, outcome.Margin.DLS)
			assert.Equal(t, tt.status, outcome.Raw)
		})
	}
}

func TestParseResultInnings(t *testing.T) {
	outcome, ok := ParseResult("England won by an innings and 46 runs", "England", "Australia")
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeWinner, outcome.Kind)
	assert.Equal(t, "England", outcome.Winner)
	require.NotNil(t, outcome.Margin)
	assert.Equal(t, domain.WinByInnings, outcome.Margin.Type)
	assert.Equal(t, 46, outcome.Margin.Value)
}

func TestParseResultSuperOver(t *testing.T) {
	outcome, ok := ParseResult("India won the super over", "India", "New Zealand")
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeWinner, outcome.Kind)
	assert.Equal(t, "India", outcome.Winner)
	require.NotNil(t, outcome.Margin)
	assert.Equal(t, domain.WinBySuperOver, outcome.Margin.Type)
}

func TestParseResultGenericWin(t *testing.T) {
	outcome, ok := ParseResult("Australia won", "Australia", "England")
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeWinner, outcome.Kind)
	assert.Equal(t, "Australia", outcome.Winner)
	assert.Nil(t, outcome.Margin)
}

func TestParseResultTerminalStates(t *testing.T) {
	tests := []struct {
		name   string
		status string
		kind   domain.OutcomeKind
	}{
		{"abandoned", "Match abandoned due to rain", domain.OutcomeNoResult},
		{"no result", "No result", domain.OutcomeNoResult},
		{"called off", "Match called off", domain.OutcomeNoResult},
		{"drawn", "Match drawn", domain.OutcomeDraw},
		{"tied", "Match tied", domain.OutcomeTie},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, ok := ParseResult(tt.status, "India", "Pakistan")
			require.True(t, ok)
			assert.Equal(t, tt.kind, outcome.Kind)
		})
	}
}

func TestParseResultDrawUsesSentinel(t *testing.T) {
	outcome, ok := ParseResult("Match drawn", "India", "Pakistan")
	require.True(t, ok)
	assert.Equal(t, domain.WinnerDraw, outcome.Winner)
	assert.Equal(t, domain.WinnerDraw, outcome.CanonicalWinner())
}

func TestParseResultUnparsed(t *testing.T) {
	tests := []string{
		"",
		"Day 3: stumps",
		"Rain delay, covers coming on",
		"Unknown Team won by 7 wickets", // winner matches neither participant
	}
	for _, status := range tests {
		_, ok := ParseResult(status, "India", "Pakistan")
		assert.False(t, ok, "status %q must be unparsed", status)
	}
}

func TestParseRuleOrdering(t *testing.T) {
	// "abandoned" must win over the generic winner rule even when the text
	// also contains "won".
	outcome, ok := ParseResult("Match abandoned; India had won the toss", "India", "Pakistan")
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeNoResult, outcome.Kind)
}
