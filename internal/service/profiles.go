package service

import (
	"github.com/fortuna/janus/internal/halftime"
	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/store"
	"github.com/fortuna/janus/internal/store/repository"
)

// recentGames is the window behind the recent-form average
const recentGames = 10

// Profile is a player's recent form for one prop type
type Profile struct {
	PlayerID      int            `json:"player_id"`
	PropType      picks.PropType `json:"prop_type"`
	GamesAnalyzed int            `json:"games_analyzed"`
	Average       float64        `json:"average"`
	AvgMinutes    float64        `json:"avg_minutes"`
}

// BuildProfile averages a prop over recent box scores
func BuildProfile(playerID int, prop picks.PropType, games []*store.PlayerGameStats) Profile {
	p := Profile{PlayerID: playerID, PropType: prop, GamesAnalyzed: len(games)}
	if len(games) == 0 {
		return p
	}

	var total, minutes float64
	var minuteGames int
	for _, g := range games {
		total += repository.StatValue(g, prop)
		if g.MinutesPlayed.Valid {
			minutes += g.MinutesPlayed.Float64
			minuteGames++
		}
	}

	p.Average = total / float64(len(games))
	p.AvgMinutes = picks.SafeDiv(minutes, float64(minuteGames))
	return p
}

// toBaseline converts a stored half baseline
func toBaseline(b *store.HalfBaseline) *halftime.Baseline {
	if b == nil {
		return nil
	}
	return &halftime.Baseline{
		FirstHalfShare: b.FirstHalfShare,
		FirstHalfRate:  b.FirstHalfRate,
		SecondHalfRate: b.SecondHalfRate,
		GamesSampled:   b.GamesSampled,
	}
}
