package halftime

import (
	"fmt"
	"math"

	"github.com/fortuna/janus/internal/picks"
)

const (
	halfMinutes  = 24.0
	neutralPace  = 100.0
	paceWeight   = 0.5
	varianceBand = 15.0

	// fatigue and minutes signals are not wired yet; the hooks stay multiplicative
	fatigueAdjustment = 0.0
	minutesAdjustment = 0.0
)

// Baseline is a player's historical half split for one prop type.
// Rates are per minute of game clock.
type Baseline struct {
	FirstHalfShare float64 `json:"first_half_share"`
	FirstHalfRate  float64 `json:"first_half_rate"`
	SecondHalfRate float64 `json:"second_half_rate"`
	GamesSampled   int     `json:"games_sampled"`
}

func (b *Baseline) usable() bool {
	return b != nil && b.FirstHalfRate > 0 && b.SecondHalfRate >= 0
}

// Input bundles everything the recalibration reads
type Input struct {
	Pick     picks.Pick
	Snapshot picks.LiveSnapshot
	// Baseline is nil when the store has no history for the player
	Baseline   *Baseline
	L10Average float64
	// AvgMinutes is the recent minutes average; 0 falls back to first-half minutes doubled
	AvgMinutes float64
}

// Recalibrate computes the second-half projection from first-half production.
// It is a pure function of its input.
func Recalibrate(in Input) *picks.HalftimeRecalibration {
	snap := in.Snapshot
	actual := snap.CurrentValue

	var expected, rate1H, regression float64
	source := picks.SourceTierFallback

	if b := in.Baseline; b.usable() {
		source = picks.SourceHistorical
		if in.L10Average > 0 && b.FirstHalfShare > 0 {
			expected = in.L10Average * b.FirstHalfShare
		} else {
			expected = b.FirstHalfRate * halfMinutes
		}
		rate1H = b.FirstHalfRate
		regression = b.SecondHalfRate / b.FirstHalfRate
	} else {
		expected = in.L10Average / 2
		rate1H = expected / halfMinutes
		if expected <= 0 {
			source = picks.SourceObserved
			rate1H = actual / halfMinutes
			if rate1H <= 0 {
				rate1H = math.Max(snap.RatePerMinute, 0)
			}
		}
		avgMinutes := in.AvgMinutes
		if avgMinutes <= 0 {
			avgMinutes = snap.MinutesPlayed * 2
		}
		regression = tierRegression(avgMinutes)
	}

	variance := picks.SafeDiv(actual-expected, expected) * 100
	rate2H := rate1H * regression

	pace := snap.PaceRating
	if pace <= 0 {
		pace = neutralPace
	}
	paceAdj := (pace - neutralPace) / neutralPace * paceWeight

	linear := actual + snap.RatePerMinute*halfMinutes
	recalibrated := (actual + rate2H*halfMinutes) * (1 + fatigueAdjustment) * (1 + minutesAdjustment) * (1 + paceAdj)

	boost := confidenceBoost(in.Pick.Side, variance)

	rec := &picks.HalftimeRecalibration{
		PickID:                 in.Pick.ID,
		Actual1H:               actual,
		Expected1H:             picks.Round1(expected),
		Variance1HPct:          picks.Round1(variance),
		Historical1HRate:       round3(rate1H),
		Historical2HRate:       round3(rate2H),
		RegressionFactor:       round3(regression),
		PaceAdjustment:         round3(paceAdj),
		FatigueAdjustment:      fatigueAdjustment,
		LinearProjection:       picks.Round1(linear),
		RecalibratedProjection: picks.Round1(recalibrated),
		ConfidenceBoost:        boost,
		AdjustedConfidence:     picks.Clamp(snap.Confidence+boost, 1, 99),
		Source:                 source,
	}
	rec.Insight = insight(in.Pick, rec)
	return rec
}

// Provisional reports whether a recalibration was built without any history
func Provisional(rec *picks.HalftimeRecalibration) bool {
	return rec != nil && rec.Source == picks.SourceObserved
}

// tierRegression is the second-half decay used when no history exists
func tierRegression(avgMinutes float64) float64 {
	switch {
	case avgMinutes >= 32:
		return 0.95
	case avgMinutes >= 24:
		return 0.92
	default:
		return 0.88
	}
}

func confidenceBoost(side picks.Side, variance float64) float64 {
	switch {
	case variance >= varianceBand:
		if side == picks.SideOver {
			return 5
		}
		return -10
	case variance <= -varianceBand:
		if side == picks.SideOver {
			return -10
		}
		return 5
	}
	return 0
}

func insight(pick picks.Pick, rec *picks.HalftimeRecalibration) string {
	var read string
	switch {
	case rec.Source == picks.SourceObserved:
		read = "no half history, projecting from first-half rate"
	case rec.Variance1HPct >= varianceBand:
		read = "hot first half"
	case rec.Variance1HPct <= -varianceBand:
		read = "slow first half"
	default:
		read = "first half in line with history"
	}
	return fmt.Sprintf("%s: %.0f vs %.1f expected (%+.1f%%), 2H projects %.1f against %s %.1f",
		read, rec.Actual1H, rec.Expected1H, rec.Variance1HPct, rec.RecalibratedProjection, pick.Side, pick.Line)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
