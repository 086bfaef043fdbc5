package picks

import "time"

// Urgency ranks how quickly a recommendation needs attention
type Urgency string

const (
	UrgencyNone   Urgency = "none"
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// PaceStatus classifies production against the line's expected pace
type PaceStatus string

const (
	PaceAhead    PaceStatus = "ahead"
	PaceOnTrack  PaceStatus = "on_track"
	PaceBehind   PaceStatus = "behind"
	PaceCritical PaceStatus = "critical"
)

// QuarterTransitionAlert summarizes a pick's pace at the end of a quarter.
// Alerts live for a fixed TTL from CreatedAt.
type QuarterTransitionAlert struct {
	PickID           string     `json:"pick_id"`
	Quarter          int        `json:"quarter"`
	Label            string     `json:"label"` // Q1, Q2, HALFTIME, Q3
	Status           PaceStatus `json:"status"`
	PaceGapPct       float64    `json:"pace_gap_pct"`
	ExpectedAtEnd    float64    `json:"expected_at_end"`
	CurrentTotal     float64    `json:"current_total"`
	CurrentVelocity  float64    `json:"current_velocity"`
	RequiredVelocity float64    `json:"required_velocity"`
	RemainingMinutes float64    `json:"remaining_minutes"`
	Insight          string     `json:"insight"`
	Action           string     `json:"action"`
	Urgency          Urgency    `json:"urgency"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
}

// BaselineSource records where halftime expectations came from
type BaselineSource string

const (
	SourceHistorical   BaselineSource = "historical"
	SourceTierFallback BaselineSource = "tier_fallback"
	// SourceObserved means no history was available and the first half's own rate
	// stands in for it. Such a result is provisional.
	SourceObserved BaselineSource = "observed_rate"
)

// HalftimeRecalibration is the second-half projection computed once at halftime
type HalftimeRecalibration struct {
	PickID                 string         `json:"pick_id"`
	Actual1H               float64        `json:"actual_1h"`
	Expected1H             float64        `json:"expected_1h"`
	Variance1HPct          float64        `json:"variance_1h_pct"`
	Historical1HRate       float64        `json:"historical_1h_rate"`
	Historical2HRate       float64        `json:"historical_2h_rate"`
	RegressionFactor       float64        `json:"regression_factor"`
	PaceAdjustment         float64        `json:"pace_adjustment"`
	FatigueAdjustment      float64        `json:"fatigue_adjustment"`
	LinearProjection       float64        `json:"linear_projection"`
	RecalibratedProjection float64        `json:"recalibrated_projection"`
	ConfidenceBoost        float64        `json:"confidence_boost"`
	AdjustedConfidence     float64        `json:"adjusted_confidence"`
	Source                 BaselineSource `json:"source"`
	Insight                string         `json:"insight"`
}
