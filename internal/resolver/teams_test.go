package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamsMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "India", "India", true},
		{"case insensitive", "india", "INDIA", true},
		{"abbreviation alias", "IND", "India", true},
		{"alias symmetric", "India", "IND", true},
		{"substring", "New Zealand", "Zealand", true},
		{"alias group nickname", "Black Caps", "NZ", true},
		{"franchise alias", "CSK", "Chennai Super Kings", true},
		{"different teams", "India", "Pakistan", false},
		{"different abbreviations", "IND", "PAK", false},
		{"empty", "", "India", false},
		{"whitespace normalization", "  south   africa ", "South Africa", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TeamsMatch(tt.a, tt.b))
			assert.Equal(t, tt.want, TeamsMatch(tt.b, tt.a), "must be symmetric")
		})
	}
}

func TestPickTeam(t *testing.T) {
	got, ok := PickTeam("IND", "India", "Pakistan")
	assert.True(t, ok)
	assert.Equal(t, "India", got)

	got, ok = PickTeam("pak", "India", "Pakistan")
	assert.True(t, ok)
	assert.Equal(t, "Pakistan", got)

	_, ok = PickTeam("Australia", "India", "Pakistan")
	assert.False(t, ok)
}

func TestResultCovers(t *testing.T) {
	raw := RawResult{Participants: []string{"IND", "PAK"}}
	assert.True(t, ResultCovers(raw, "India", "Pakistan"))
	assert.True(t, ResultCovers(raw, "Pakistan", "India"), "order must not matter")
	assert.False(t, ResultCovers(raw, "India", "Australia"))
	assert.False(t, ResultCovers(RawResult{Participants: []string{"India"}}, "India", "Pakistan"))
}
