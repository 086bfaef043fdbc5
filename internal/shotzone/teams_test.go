package shotzone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOpponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Boston Celtics", "BOS"},
		{"boston celtics", "BOS"},
		{"  Denver Nuggets ", "DEN"},
		{"LAL", "LAL"},
		{"lac", "LAC"},
		{"Lakers", "LAL"},
		{"LA Clippers", "LAC"},
		{"Portland Trail Blazers", "POR"},
		{"Blazers", "POR"},
		{"Sixers", "PHI"},
		{"Philadelphia 76ers", "PHI"},
		{"Charlotte Hornets", "CHA"},
		{"Hornets", "CHA"},
		{"Nets", "BKN"},
		{"vs Warriors", "GSW"},
		{"at Minnesota Wolves", "MIN"},
		{"Seattle Supersonics", "SEA"},
		{"Vancouver", "VAN"},
		{"x y", "XY"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOpponent(tt.in))
		})
	}
}

func TestTeamsTableIsComplete(t *testing.T) {
	all := Teams()
	assert.Len(t, all, 30)

	seen := make(map[string]bool)
	for _, team := range all {
		assert.Len(t, team.Code, 3)
		assert.False(t, seen[team.Code], "duplicate code %s", team.Code)
		seen[team.Code] = true
		assert.Equal(t, team.Code, NormalizeOpponent(team.FullName()))
		assert.Equal(t, team.Code, NormalizeOpponent(team.Nickname))
	}

	team, ok := LookupTeam("okc")
	assert.True(t, ok)
	assert.Equal(t, "Thunder", team.Nickname)
}
