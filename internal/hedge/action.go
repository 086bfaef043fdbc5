package hedge

import (
	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/rotation"
)

// Status is the hedge verdict for a pick
type Status string

const (
	StatusOnTrack    Status = "on_track"
	StatusMonitor    Status = "monitor"
	StatusAlert      Status = "alert"
	StatusUrgent     Status = "urgent"
	StatusProfitLock Status = "profit_lock"
)

// Sizing is how much of the original stake to hedge
type Sizing string

const (
	SizingNone     Sizing = "none"
	SizingLight    Sizing = "light"
	SizingModerate Sizing = "moderate"
	SizingStrong   Sizing = "strong"
)

// Thresholds are the hit-probability cut-offs for the urgent, alert and monitor states
type Thresholds struct {
	Urgent  float64 `json:"urgent"`
	Alert   float64 `json:"alert"`
	Monitor float64 `json:"monitor"`
}

// LineMovement compares the tracked live line with the original
type LineMovement struct {
	Original  float64 `json:"original"`
	Live      float64 `json:"live"`
	Delta     float64 `json:"delta"`
	Bookmaker string  `json:"bookmaker,omitempty"`
}

// MiddleOpportunity is a window of finals where the original bet and an opposing
// bet at the live line both win. Bounds are exclusive.
type MiddleOpportunity struct {
	OriginalLine  float64    `json:"original_line"`
	OriginalSide  picks.Side `json:"original_side"`
	HedgeLine     float64    `json:"hedge_line"`
	HedgeSide     picks.Side `json:"hedge_side"`
	LowerBound    float64    `json:"lower_bound"`
	UpperBound    float64    `json:"upper_bound"`
	Width         float64    `json:"width"`
	WinningFinals []int      `json:"winning_finals"`
}

// Contains reports whether a final value lands inside the window
func (m MiddleOpportunity) Contains(final float64) bool {
	return final > m.LowerBound && final < m.UpperBound
}

// Action is the recommendation for one pick on one poll
type Action struct {
	PickID         string        `json:"pick_id"`
	Status         Status        `json:"status"`
	Rule           string        `json:"rule"`
	Headline       string        `json:"headline"`
	Message        string        `json:"message"`
	Action         string        `json:"action"`
	Urgency        picks.Urgency `json:"urgency"`
	HitProbability float64       `json:"hit_probability"`
	Confidence     float64       `json:"confidence"`
	HedgeSizing    Sizing        `json:"hedge_sizing,omitempty"`

	Line           float64 `json:"line"`
	CurrentValue   float64 `json:"current_value"`
	ProjectedFinal float64 `json:"projected_final"`
	GapToLine      float64 `json:"gap_to_line"`
	CurrentRate    float64 `json:"current_rate"`
	RequiredRate   float64 `json:"required_rate"`

	Thresholds *Thresholds        `json:"thresholds,omitempty"`
	ZoneScore  *float64           `json:"zone_score,omitempty"`
	Rotation   rotation.Estimate  `json:"rotation"`
	LiveLine   *picks.LiveLine    `json:"live_line,omitempty"`
	Movement   *LineMovement      `json:"line_movement,omitempty"`
	Middle     *MiddleOpportunity `json:"middle_opportunity,omitempty"`

	QuarterTransition *picks.QuarterTransitionAlert `json:"quarter_transition,omitempty"`
	Halftime          *picks.HalftimeRecalibration  `json:"halftime,omitempty"`
}
