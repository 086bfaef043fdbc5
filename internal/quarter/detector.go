package quarter

import (
	"fmt"
	"math"
	"time"

	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/rotation"
)

const (
	quarterMinutes = 12.0
	// share of game minutes a player is assumed to have played when the feed has no minutes
	fallbackMinutesShare = 0.75

	halftimeLabel = "HALFTIME"
)

// Tracking is the quarter state attached to a pick's output
type Tracking struct {
	CurrentQuarter  int                           `json:"current_quarter"`
	PreviousQuarter int                           `json:"previous_quarter"`
	Alert           *picks.QuarterTransitionAlert `json:"alert,omitempty"`
	// Issued is set on the poll that created Alert
	Issued bool `json:"issued"`
}

// Detector detects quarter boundaries per pick and caches the resulting alerts
type Detector struct {
	store *AlertStore
}

// NewDetector creates a detector backed by store
func NewDetector(store *AlertStore) *Detector {
	return &Detector{store: store}
}

// Store returns the backing alert store
func (d *Detector) Store() *AlertStore {
	return d.store
}

// Observe records a snapshot for the pick. When the period advances past a completed
// quarter (or the game first reaches halftime) it computes and caches a transition
// alert. Periods outside 1-4 are ignored.
func (d *Detector) Observe(pick picks.Pick, snap picks.LiveSnapshot, est rotation.Estimate, now time.Time) Tracking {
	q := snap.Period
	tracking := Tracking{CurrentQuarter: q}

	d.store.update(pick.ID, func(e *entry) {
		prev := e.lastQuarter
		tracking.PreviousQuarter = prev

		if q < 1 || q > 4 {
			tracking.Alert = activeAlert(e, now)
			return
		}

		var alert *picks.QuarterTransitionAlert
		switch {
		case snap.GameStatus == picks.StatusHalftime && prev == 2 && !e.halftimeIssued:
			alert = Transition(pick, snap, est, 2, now)
			alert.Label = halftimeLabel
			e.halftimeIssued = true
		case q > prev && prev >= 1 && prev < 4:
			completed := q - 1
			// The halftime alert already covered Q2
			if !(completed == 2 && e.halftimeIssued) {
				alert = Transition(pick, snap, est, completed, now)
			}
		}

		if alert != nil && (e.alert == nil || alert.Quarter >= e.alert.Quarter) {
			alert.ExpiresAt = alert.CreatedAt.Add(d.store.ttl)
			e.alert = alert
			tracking.Issued = true
		}
		if q > prev {
			e.lastQuarter = q
		}

		tracking.Alert = activeAlert(e, now)
	})

	return tracking
}

// Transition computes the pace read for a pick at the end of completedQuarter
func Transition(pick picks.Pick, snap picks.LiveSnapshot, est rotation.Estimate, completedQuarter int, now time.Time) *picks.QuarterTransitionAlert {
	line := pick.Line
	current := snap.CurrentValue

	expectedAtEnd := line / 4 * float64(completedQuarter)
	paceGapPct := picks.SafeDiv(current-expectedAtEnd, expectedAtEnd) * 100

	minutes := snap.MinutesPlayed
	if minutes <= 0 {
		minutes = float64(completedQuarter) * quarterMinutes * fallbackMinutesShare
	}
	currentVelocity := picks.SafeDiv(current, minutes)
	requiredVelocity := math.Max(picks.SafeDiv(line-current, est.ExpectedRemaining), 0)

	status, urgency := classify(pick.Side, paceGapPct)

	alert := &picks.QuarterTransitionAlert{
		PickID:           pick.ID,
		Quarter:          completedQuarter,
		Label:            fmt.Sprintf("Q%d", completedQuarter),
		Status:           status,
		PaceGapPct:       picks.Round1(paceGapPct),
		ExpectedAtEnd:    picks.Round1(expectedAtEnd),
		CurrentTotal:     current,
		CurrentVelocity:  round2(currentVelocity),
		RequiredVelocity: round2(requiredVelocity),
		RemainingMinutes: picks.Round1(est.ExpectedRemaining),
		Urgency:          urgency,
		CreatedAt:        now,
	}
	alert.Insight, alert.Action = describe(pick, alert)
	return alert
}

// classify maps the pace gap onto a status. Under picks invert the thresholds.
func classify(side picks.Side, gap float64) (picks.PaceStatus, picks.Urgency) {
	if side == picks.SideUnder {
		switch {
		case gap <= -20:
			return picks.PaceAhead, picks.UrgencyNone
		case gap <= 10:
			return picks.PaceOnTrack, picks.UrgencyNone
		case gap <= 25:
			return picks.PaceBehind, picks.UrgencyMedium
		default:
			return picks.PaceCritical, picks.UrgencyHigh
		}
	}

	switch {
	case gap >= 20:
		return picks.PaceAhead, picks.UrgencyNone
	case gap >= -10:
		return picks.PaceOnTrack, picks.UrgencyNone
	case gap >= -25:
		return picks.PaceBehind, picks.UrgencyMedium
	default:
		return picks.PaceCritical, picks.UrgencyHigh
	}
}

func describe(pick picks.Pick, a *picks.QuarterTransitionAlert) (insight, action string) {
	insight = fmt.Sprintf("%s: %s has %.0f %s vs %.1f pace for %s %.1f (%+.1f%%)",
		a.Label, pick.PlayerName, a.CurrentTotal, pick.PropType, a.ExpectedAtEnd, pick.Side, pick.Line, a.PaceGapPct)

	switch a.Status {
	case picks.PaceAhead:
		action = "HOLD - well ahead of pace"
	case picks.PaceOnTrack:
		action = "HOLD - tracking the line"
	case picks.PaceBehind:
		if pick.Side == picks.SideOver {
			action = fmt.Sprintf("MONITOR - needs %.2f/min over ~%.0f min", a.RequiredVelocity, a.RemainingMinutes)
		} else {
			action = fmt.Sprintf("MONITOR - running %.2f/min, cushion is shrinking", a.CurrentVelocity)
		}
	default:
		action = fmt.Sprintf("HEDGE NOW - %.0f%% off pace after %s", math.Abs(a.PaceGapPct), a.Label)
	}
	return insight, action
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
