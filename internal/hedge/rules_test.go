package hedge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/rotation"
)

func TestRulesOrder(t *testing.T) {
	want := []string{
		"bench_behind",
		"multi_risk_or_below_urgent",
		"rest_approaching_behind",
		"single_risk_or_below_alert",
		"below_monitor_or_small_gap",
		"on_track",
	}

	var names []string
	for i, r := range rules {
		assert.Equal(t, i+1, r.priority)
		names = append(names, r.name)
	}
	assert.Equal(t, want, names)

	// the last rule is the default
	assert.True(t, rules[len(rules)-1].applies(&evaluation{}))
}

func TestRuleCascade(t *testing.T) {
	tests := []struct {
		name    string
		in      func() Input
		rule    string
		status  Status
		urgency picks.Urgency
	}{
		{
			name: "resting and behind on an over",
			in: func() Input {
				in := input(picks.SideOver, 25, 14, 0.5, 20) // gap -1
				in.Rotation.CurrentPhase = rotation.PhaseRest
				in.Rotation.RestWindowRemaining = 4
				return in
			},
			rule: "bench_behind", status: StatusAlert, urgency: picks.UrgencyHigh,
		},
		{
			name: "resting and behind on an under is not bench_behind",
			in: func() Input {
				in := input(picks.SideUnder, 25, 16, 0.5, 20) // gap -1
				in.Rotation.CurrentPhase = rotation.PhaseRest
				return in
			},
			rule: "single_risk_or_below_alert", status: StatusAlert, urgency: picks.UrgencyMedium,
		},
		{
			name: "two risk flags while ahead",
			in: func() Input {
				in := input(picks.SideOver, 25, 20, 0.5, 20) // gap 5
				in.Snapshot.RiskFlags = []picks.RiskFlag{picks.RiskBlowout, picks.RiskGarbageTime}
				return in
			},
			rule: "multi_risk_or_below_urgent", status: StatusUrgent, urgency: picks.UrgencyHigh,
		},
		{
			name: "duplicate flag counts once",
			in: func() Input {
				in := input(picks.SideOver, 25, 20, 0.5, 20)
				in.Snapshot.RiskFlags = []picks.RiskFlag{picks.RiskBlowout, picks.RiskBlowout}
				return in
			},
			rule: "single_risk_or_below_alert", status: StatusAlert, urgency: picks.UrgencyMedium,
		},
		{
			name: "far behind",
			in:   func() Input { return input(picks.SideOver, 25, 9, 0.5, 20) }, // gap -6 -> 15
			rule: "multi_risk_or_below_urgent", status: StatusUrgent, urgency: picks.UrgencyHigh,
		},
		{
			name: "approaching rest while behind",
			in: func() Input {
				in := input(picks.SideOver, 25, 14, 0.5, 20) // 40 vs urgent 33
				in.Rotation.ApproachingRest = true
				return in
			},
			rule: "rest_approaching_behind", status: StatusAlert, urgency: picks.UrgencyMedium,
		},
		{
			name: "one risk flag while ahead",
			in: func() Input {
				in := input(picks.SideOver, 25, 18, 0.5, 20) // gap 3
				in.Snapshot.RiskFlags = []picks.RiskFlag{picks.RiskFoulTrouble}
				return in
			},
			rule: "single_risk_or_below_alert", status: StatusAlert, urgency: picks.UrgencyMedium,
		},
		{
			name: "under the alert threshold",
			in:   func() Input { return input(picks.SideOver, 25, 12, 0.5, 20) }, // gap -3 -> 25
			rule: "single_risk_or_below_alert", status: StatusAlert, urgency: picks.UrgencyMedium,
		},
		{
			name: "zone disadvantage while comfortably ahead",
			in:   func() Input { return withZone(input(picks.SideOver, 25, 21, 0.5, 20), -2.5) }, // 77.5
			rule: "single_risk_or_below_alert", status: StatusAlert, urgency: picks.UrgencyMedium,
		},
		{
			name: "slightly ahead",
			in:   func() Input { return input(picks.SideOver, 25, 16, 0.5, 20) }, // gap 1 -> 55
			rule: "below_monitor_or_small_gap", status: StatusMonitor, urgency: picks.UrgencyLow,
		},
		{
			name: "small negative gap with a strong zone",
			in:   func() Input { return withZone(input(picks.SideOver, 25, 14, 0.5, 20), 5) }, // 55 vs alert 35
			rule: "below_monitor_or_small_gap", status: StatusMonitor, urgency: picks.UrgencyLow,
		},
		{
			name: "on pace",
			in:   func() Input { return input(picks.SideOver, 25, 18, 0.5, 20) }, // gap 3 -> 70
			rule: "on_track", status: StatusOnTrack, urgency: picks.UrgencyNone,
		},
		{
			name: "under with room",
			in:   func() Input { return input(picks.SideUnder, 25, 8, 0.5, 20) }, // gap 7 -> 85
			rule: "on_track", status: StatusOnTrack, urgency: picks.UrgencyNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Evaluate(tt.in())
			assert.Equal(t, tt.rule, a.Rule)
			assert.Equal(t, tt.status, a.Status)
			assert.Equal(t, tt.urgency, a.Urgency)
			assert.NotEmpty(t, a.Message)
		})
	}
}

func TestThresholds(t *testing.T) {
	tests := []struct {
		name string
		in   func() Input
		want Thresholds
	}{
		{
			name: "base",
			in:   func() Input { return input(picks.SideOver, 25, 10, 0.5, 20) },
			want: Thresholds{Urgent: 25, Alert: 45, Monitor: 65},
		},
		{
			name: "over resting and approaching with a bad zone",
			in: func() Input {
				in := withZone(input(picks.SideOver, 25, 10, 0.5, 20), -3)
				in.Rotation.CurrentPhase = rotation.PhaseRest
				in.Rotation.ApproachingRest = true
				return in
			},
			want: Thresholds{Urgent: 58, Alert: 78, Monitor: 85},
		},
		{
			name: "under ignores rotation",
			in: func() Input {
				in := input(picks.SideUnder, 25, 10, 0.5, 20)
				in.Rotation.CurrentPhase = rotation.PhaseRest
				in.Rotation.ApproachingRest = true
				return in
			},
			want: Thresholds{Urgent: 25, Alert: 45, Monitor: 65},
		},
		{
			name: "under with a stingy defense is an advantage",
			in:   func() Input { return withZone(input(picks.SideUnder, 25, 10, 0.5, 20), -3) },
			want: Thresholds{Urgent: 15, Alert: 35, Monitor: 60},
		},
		{
			name: "zone inside the dead band",
			in:   func() Input { return withZone(input(picks.SideOver, 25, 10, 0.5, 20), 2) },
			want: Thresholds{Urgent: 25, Alert: 45, Monitor: 65},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Evaluate(tt.in())
			if assert.NotNil(t, a.Thresholds) {
				assert.Equal(t, tt.want, *a.Thresholds)
			}
		})
	}
}
