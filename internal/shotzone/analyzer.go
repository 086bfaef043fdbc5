package shotzone

import "github.com/fortuna/janus/internal/picks"

// Analyzer scores picks against the cached zone tables
type Analyzer struct {
	cache *TableCache
}

// NewAnalyzer creates an analyzer over cache
func NewAnalyzer(cache *TableCache) *Analyzer {
	return &Analyzer{cache: cache}
}

// Analyze returns the pick's shot-zone matchup. It reports false for non-scoring
// props, a missing opponent, or when either table has no data.
func (a *Analyzer) Analyze(pick picks.Pick) (*Matchup, bool) {
	if !pick.PropType.IsScoring() || pick.Opponent == "" {
		return nil, false
	}
	return a.Matchup(pick.PlayerID, pick.Opponent, pick.PropType)
}

// Matchup scores a player against an opponent by name or code
func (a *Analyzer) Matchup(playerID int, opponent string, prop picks.PropType) (*Matchup, bool) {
	if a == nil || a.cache == nil {
		return nil, false
	}

	code := NormalizeOpponent(opponent)
	player, ok := a.cache.PlayerZones(playerID)
	if !ok {
		return nil, false
	}
	defense, ok := a.cache.TeamDefense(code)
	if !ok {
		return nil, false
	}

	m := Score(playerID, code, prop, player, defense)
	if m == nil {
		return nil, false
	}
	if team, ok := LookupTeam(code); ok {
		m.OpponentName = team.FullName()
	}
	return m, true
}
