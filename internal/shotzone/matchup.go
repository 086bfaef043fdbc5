package shotzone

import (
	"math"

	"github.com/fortuna/janus/internal/picks"
)

const (
	fgEdge = 0.05

	leagueTeams    = 30
	topThirdMax    = leagueTeams / 3     // ranks 1-10
	bottomThirdMin = leagueTeams*2/3 + 1 // ranks 21-30
)

// ZoneEntry is one zone's contribution to a matchup
type ZoneEntry struct {
	Zone         Zone    `json:"zone"`
	Frequency    float64 `json:"frequency"`
	PlayerFGPct  float64 `json:"player_fg_pct"`
	DefenseFGPct float64 `json:"defense_fg_pct"`
	DefenseRank  int     `json:"defense_rank"`
	Grade        Grade   `json:"matchup_grade"`
	Impact       float64 `json:"impact"`
}

// Matchup scores a player's shot profile against an opponent's zone defense
type Matchup struct {
	PlayerID       int            `json:"player_id"`
	Opponent       string         `json:"opponent"`
	OpponentName   string         `json:"opponent_name,omitempty"`
	PropType       picks.PropType `json:"prop_type"`
	Zones          []ZoneEntry    `json:"zones"`
	OverallScore   float64        `json:"overall_matchup_score"`
	PrimaryZone    Zone           `json:"primary_zone"`
	Recommendation string         `json:"recommendation"`
}

// GradeZone grades one zone. A big enough FG% edge wins regardless of the defense rank.
func GradeZone(playerFGPct, defenseFGPct float64, rank int) Grade {
	diff := playerFGPct - defenseFGPct
	switch {
	case diff > fgEdge || rank >= bottomThirdMin:
		return GradeAdvantage
	case diff < -fgEdge || (rank >= 1 && rank <= topThirdMax):
		return GradeDisadvantage
	default:
		return GradeNeutral
	}
}

// Score builds a matchup from a player's zone stats and the opponent's zone defense.
// Zones missing on either side are skipped; it returns nil when no zone overlaps.
func Score(playerID int, opponent string, prop picks.PropType, player map[Zone]PlayerZoneStat, defense map[Zone]ZoneDefenseStat) *Matchup {
	m := &Matchup{
		PlayerID: playerID,
		Opponent: opponent,
		PropType: prop,
	}

	var total float64
	primaryFreq := -1.0
	for _, z := range Zones() {
		ps, ok := player[z]
		if !ok {
			continue
		}
		ds, ok := defense[z]
		if !ok {
			continue
		}

		grade := GradeZone(ps.FGPct, ds.OppFGPct, ds.Rank)
		impact := math.Round(baseImpact[grade] * (1 + ps.Frequency))

		m.Zones = append(m.Zones, ZoneEntry{
			Zone:         z,
			Frequency:    ps.Frequency,
			PlayerFGPct:  ps.FGPct,
			DefenseFGPct: ds.OppFGPct,
			DefenseRank:  ds.Rank,
			Grade:        grade,
			Impact:       impact,
		})

		// frequency is applied again here on top of the impact weighting
		total += impact * ps.Frequency

		if ps.Frequency > primaryFreq {
			primaryFreq = ps.Frequency
			m.PrimaryZone = z
		}
	}

	if len(m.Zones) == 0 {
		return nil
	}

	m.OverallScore = picks.Round1(total)
	m.Recommendation = recommend(m.OverallScore, m.PrimaryZone)
	return m
}

func recommend(score float64, primary Zone) string {
	switch {
	case score > 5:
		return "Strong matchup: attacks the defense where it is weakest, led by " + primary.String()
	case score > 0:
		return "Favorable matchup: slight edge in " + primary.String()
	case score < -5:
		return "Tough matchup: defense takes away " + primary.String()
	case score < 0:
		return "Unfavorable matchup: defense holds up in " + primary.String()
	default:
		return "Neutral matchup"
	}
}
