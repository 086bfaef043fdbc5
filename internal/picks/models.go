package picks

import (
	"time"
)

// Side is the direction of a wager relative to its line
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Valid reports whether the side is one of the known values
func (s Side) Valid() bool {
	return s == SideOver || s == SideUnder
}

// PropType is the stat a pick is wagered on
type PropType string

const (
	PropPoints   PropType = "points"
	PropRebounds PropType = "rebounds"
	PropAssists  PropType = "assists"
	PropThrees   PropType = "threes"
	PropSteals   PropType = "steals"
	PropBlocks   PropType = "blocks"
	PropPRA      PropType = "pra"
	PropPtsReb   PropType = "pts_reb"
	PropPtsAst   PropType = "pts_ast"
	PropRebAst   PropType = "reb_ast"
)

// Valid reports whether the prop type is supported
func (p PropType) Valid() bool {
	switch p {
	case PropPoints, PropRebounds, PropAssists, PropThrees, PropSteals,
		PropBlocks, PropPRA, PropPtsReb, PropPtsAst, PropRebAst:
		return true
	}
	return false
}

// IsScoring reports whether the prop depends on made shots
func (p PropType) IsScoring() bool {
	switch p {
	case PropPoints, PropThrees, PropPRA, PropPtsReb, PropPtsAst:
		return true
	}
	return false
}

// GameStatus mirrors the live feed's game state
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusHalftime   GameStatus = "halftime"
	StatusFinal      GameStatus = "final"
)

// RiskFlag marks a live game condition that threatens a pick
type RiskFlag string

const (
	RiskBlowout     RiskFlag = "blowout"
	RiskFoulTrouble RiskFlag = "foul_trouble"
	RiskGarbageTime RiskFlag = "garbage_time"
	RiskLowMinutes  RiskFlag = "low_minutes"
)

// Trend is the short-term direction of a player's production
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendSteady Trend = "steady"
)

// LiveLine is the current market line for a pick from a bookmaker
type LiveLine struct {
	Line       float64   `json:"line"`
	Bookmaker  string    `json:"bookmaker"`
	OverPrice  int       `json:"over_price,omitempty"`
	UnderPrice int       `json:"under_price,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Pick is a tracked player prop wager
type Pick struct {
	ID         string    `json:"id"`
	PlayerID   int       `json:"player_id"`
	PlayerName string    `json:"player_name"`
	PropType   PropType  `json:"prop_type"`
	Line       float64   `json:"line"`
	Side       Side      `json:"side"`
	Opponent   string    `json:"opponent,omitempty"`
	LiveLine   *LiveLine `json:"live_line,omitempty"`
}

// EffectiveLine returns the live book line when one is tracked, else the original line
func (p Pick) EffectiveLine() float64 {
	if p.LiveLine != nil && p.LiveLine.Line > 0 {
		return p.LiveLine.Line
	}
	return p.Line
}

// LiveSnapshot is one poll of the live feed for a pick. It is replaced wholesale
// on every poll; the quarter and halftime fields are merged in by the pipeline.
type LiveSnapshot struct {
	PickID         string     `json:"pick_id"`
	GameID         string     `json:"game_id,omitempty"`
	CurrentValue   float64    `json:"current_value"`
	ProjectedFinal float64    `json:"projected_final"`
	GameProgress   float64    `json:"game_progress"` // 0-100
	Period         int        `json:"period"`
	Clock          string     `json:"clock"`
	GameStatus     GameStatus `json:"game_status"`
	PaceRating     float64    `json:"pace_rating"`
	MinutesPlayed  float64    `json:"minutes_played"`
	RatePerMinute  float64    `json:"rate_per_minute"`
	Trend          Trend      `json:"trend,omitempty"`
	RiskFlags      []RiskFlag `json:"risk_flags,omitempty"`
	ScoreDiff      int        `json:"score_diff"`
	Confidence     float64    `json:"confidence"`

	QuarterTransition *QuarterTransitionAlert `json:"quarter_transition,omitempty"`
	Halftime          *HalftimeRecalibration  `json:"halftime,omitempty"`
}

// HasRisk reports whether the snapshot carries the given flag
func (s LiveSnapshot) HasRisk(flag RiskFlag) bool {
	for _, f := range s.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// RiskCount returns the number of distinct risk flags on the snapshot
func (s LiveSnapshot) RiskCount() int {
	seen := make(map[RiskFlag]struct{}, len(s.RiskFlags))
	for _, f := range s.RiskFlags {
		seen[f] = struct{}{}
	}
	return len(seen)
}
