package hedge

import (
	"fmt"
	"strings"

	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/rotation"
)

type verdict struct {
	status   Status
	urgency  picks.Urgency
	headline string
	message  string
	action   string
	sizing   Sizing
}

// rule is one state of the hedge cascade. Rules are checked in priority order and
// the first whose predicate holds produces the verdict.
type rule struct {
	priority int
	name     string
	applies  func(e *evaluation) bool
	produce  func(e *evaluation) verdict
}

// The thresholds overlap on purpose; reordering changes outcomes.
var rules = []rule{
	{
		priority: 1,
		name:     "bench_behind",
		applies: func(e *evaluation) bool {
			return e.over() && e.in.Rotation.CurrentPhase == rotation.PhaseRest && e.gap < 0
		},
		produce: func(e *evaluation) verdict {
			return withSizing(e, verdict{
				status:   StatusAlert,
				urgency:  picks.UrgencyHigh,
				headline: "ON BENCH & BEHIND",
				message: fmt.Sprintf("Resting for ~%.0f more min and projecting %.1f short of %.1f",
					e.in.Rotation.RestWindowRemaining, -e.gap, e.line),
			})
		},
	},
	{
		priority: 2,
		name:     "multi_risk_or_below_urgent",
		applies: func(e *evaluation) bool {
			return e.in.Snapshot.RiskCount() >= multiRiskFlags || e.hitProb < e.thr.Urgent
		},
		produce: func(e *evaluation) verdict {
			msg := fmt.Sprintf("Hit probability %.0f%%, projecting %.1f vs %.1f", e.hitProb, e.projected, e.line)
			if n := e.in.Snapshot.RiskCount(); n >= multiRiskFlags {
				msg = fmt.Sprintf("%d risk flags (%s). %s", n, joinFlags(e.in.Snapshot.RiskFlags), msg)
			}
			return withSizing(e, verdict{
				status:   StatusUrgent,
				urgency:  picks.UrgencyHigh,
				headline: "HEDGE NOW",
				message:  msg,
			})
		},
	},
	{
		priority: 3,
		name:     "rest_approaching_behind",
		applies: func(e *evaluation) bool {
			return e.over() && e.in.Rotation.ApproachingRest && e.gap < 0
		},
		produce: func(e *evaluation) verdict {
			return withSizing(e, verdict{
				status:   StatusAlert,
				urgency:  picks.UrgencyMedium,
				headline: "REST WINDOW AHEAD",
				message:  fmt.Sprintf("Likely to sit soon while %.1f behind the line", -e.gap),
			})
		},
	},
	{
		priority: 4,
		name:     "single_risk_or_below_alert",
		applies: func(e *evaluation) bool {
			return e.in.Snapshot.RiskCount() == 1 || e.hitProb < e.thr.Alert || e.zoneEdgeForSide() < 0
		},
		produce: func(e *evaluation) verdict {
			var msg string
			switch {
			case e.in.Snapshot.RiskCount() == 1:
				msg = fmt.Sprintf("Risk flag %s with hit probability %.0f%%", e.in.Snapshot.RiskFlags[0], e.hitProb)
			case e.hitProb < e.thr.Alert:
				msg = fmt.Sprintf("Hit probability %.0f%% is under the %.0f%% alert line", e.hitProb, e.thr.Alert)
			default:
				msg = fmt.Sprintf("Tough shot-zone matchup (%.1f)", *e.zone)
			}
			return withSizing(e, verdict{
				status:   StatusAlert,
				urgency:  picks.UrgencyMedium,
				headline: "CONSIDER HEDGE",
				message:  msg,
			})
		},
	},
	{
		priority: 5,
		name:     "below_monitor_or_small_gap",
		applies: func(e *evaluation) bool {
			return e.hitProb < e.thr.Monitor || (e.gap > smallGapFloor && e.gap < 0)
		},
		produce: func(e *evaluation) verdict {
			return withSizing(e, verdict{
				status:   StatusMonitor,
				urgency:  picks.UrgencyLow,
				headline: "MONITOR",
				message:  fmt.Sprintf("Close to the line: projecting %.1f vs %.1f", e.projected, e.line),
			})
		},
	},
	{
		priority: 6,
		name:     "on_track",
		applies:  func(e *evaluation) bool { return true },
		produce: func(e *evaluation) verdict {
			return verdict{
				status:   StatusOnTrack,
				urgency:  picks.UrgencyNone,
				headline: "ON TRACK",
				message:  fmt.Sprintf("Projecting %.1f vs %.1f (%+.1f)", e.projected, e.line, e.gap),
				action:   "Hold",
				sizing:   SizingNone,
			}
		},
	},
}

func firstMatch(e *evaluation) rule {
	for _, r := range rules {
		if r.applies(e) {
			return r
		}
	}
	return rules[len(rules)-1]
}

func withSizing(e *evaluation, v verdict) verdict {
	v.sizing, v.action = Size(e.gap, e.hitProb)
	return v
}

func joinFlags(flags []picks.RiskFlag) string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
