package service

import (
	"testing"

	"github.com/crickbet/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCheckPrimarySelection(t *testing.T) {
	match := &domain.Match{Team1: "India", Team2: "Australia"}

	tests := []struct {
		name      string
		selection string
		wantErr   bool
	}{
		{"team1 exact", "India", false},
		{"team2 exact", "Australia", false},
		{"case insensitive", "india", false},
		{"whitespace trimmed", "  Australia  ", false},
		{"draw sentinel", "DRAW", false},
		{"draw lowercase", "draw", false},
		{"non-participant", "England", true},
		{"empty", "", true},
		{"partial name", "Ind", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPrimarySelection(match, tt.selection)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
