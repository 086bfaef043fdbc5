package hedge

import (
	"fmt"
	"math"

	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/rotation"
	"github.com/fortuna/janus/internal/shotzone"
)

const (
	middleMinMove = 2.0

	minHitProbability = 5.0
	maxHitProbability = 95.0
	middleProbability = 50.0

	zoneWeight     = 3.0
	zoneModCap     = 15.0
	zoneEdge       = 2.0
	smallGapFloor  = -2.0
	multiRiskFlags = 2
)

var baseThresholds = Thresholds{Urgent: 25, Alert: 45, Monitor: 65}

// Input is everything one evaluation reads. Matchup is nil when no zone data exists.
type Input struct {
	Pick     picks.Pick
	Snapshot picks.LiveSnapshot
	Rotation rotation.Estimate
	Matchup  *shotzone.Matchup
}

// evaluation carries the derived figures the rules read
type evaluation struct {
	in        Input
	side      picks.Side
	line      float64
	current   float64
	remaining float64
	rate      float64
	projected float64
	gap       float64
	hitProb   float64
	zone      *float64
	thr       Thresholds
}

func (e *evaluation) over() bool {
	return e.side == picks.SideOver
}

// zoneEdgeForSide returns +1 for a matchup that helps the pick, -1 for one that hurts it
func (e *evaluation) zoneEdgeForSide() int {
	if e.zone == nil {
		return 0
	}
	score := *e.zone
	if !e.over() {
		score = -score
	}
	switch {
	case score > zoneEdge:
		return 1
	case score < -zoneEdge:
		return -1
	}
	return 0
}

// Evaluate produces the hedge recommendation for a pick. It performs no I/O.
func Evaluate(in Input) *Action {
	pick, snap := in.Pick, in.Snapshot

	line := pick.EffectiveLine()
	action := &Action{
		PickID:            pick.ID,
		Line:              line,
		CurrentValue:      snap.CurrentValue,
		Confidence:        picks.Clamp(snap.Confidence, 1, 99),
		Rotation:          in.Rotation,
		LiveLine:          pick.LiveLine,
		QuarterTransition: snap.QuarterTransition,
		Halftime:          snap.Halftime,
	}
	if pick.LiveLine != nil && pick.LiveLine.Line > 0 {
		action.Movement = &LineMovement{
			Original:  pick.Line,
			Live:      line,
			Delta:     picks.Round1(line - pick.Line),
			Bookmaker: pick.LiveLine.Bookmaker,
		}
	}
	if in.Matchup != nil {
		score := in.Matchup.OverallScore
		action.ZoneScore = &score
	}

	if middle := FindMiddle(pick); middle != nil {
		return profitLock(action, pick, middle)
	}
	if decided(action, pick, snap) {
		return action
	}

	e := derive(in, line)
	e.zone = action.ZoneScore

	e.hitProb = hitProbability(e)
	e.thr = thresholds(e)

	action.ProjectedFinal = picks.Round1(e.projected)
	action.GapToLine = picks.Round1(e.gap)
	action.CurrentRate = round2(e.rate)
	action.RequiredRate = round2(math.Max(picks.SafeDiv(line-e.current, e.remaining), 0))
	action.HitProbability = e.hitProb
	thr := e.thr
	action.Thresholds = &thr

	r := firstMatch(e)
	v := r.produce(e)
	action.Rule = r.name
	action.Status = v.status
	action.Urgency = v.urgency
	action.Headline = v.headline
	action.Message = v.message
	action.HedgeSizing, action.Action = v.sizing, v.action
	return action
}

// FindMiddle reports the middle window opened by a live line that moved at least two
// points in the pick's favor, or nil.
func FindMiddle(pick picks.Pick) *MiddleOpportunity {
	if pick.LiveLine == nil || pick.LiveLine.Line <= 0 {
		return nil
	}
	orig, live := pick.Line, pick.LiveLine.Line

	m := &MiddleOpportunity{OriginalLine: orig, OriginalSide: pick.Side, HedgeLine: live}
	switch {
	case pick.Side == picks.SideOver && live-orig >= middleMinMove:
		m.HedgeSide = picks.SideUnder
		m.LowerBound, m.UpperBound = orig, live
	case pick.Side == picks.SideUnder && orig-live >= middleMinMove:
		m.HedgeSide = picks.SideOver
		m.LowerBound, m.UpperBound = live, orig
	default:
		return nil
	}

	m.Width = picks.Round1(m.UpperBound - m.LowerBound)
	for n := int(math.Floor(m.LowerBound)) + 1; float64(n) < m.UpperBound; n++ {
		m.WinningFinals = append(m.WinningFinals, n)
	}
	return m
}

func profitLock(action *Action, pick picks.Pick, m *MiddleOpportunity) *Action {
	action.Status = StatusProfitLock
	action.Rule = "middle_opportunity"
	action.Urgency = picks.UrgencyMedium
	action.HitProbability = middleProbability
	action.Middle = m
	action.Headline = "MIDDLE OPPORTUNITY"
	action.Message = fmt.Sprintf("Line moved %.1f to %.1f. Finals between %.1f and %.1f win both sides",
		pick.Line, m.HedgeLine, m.LowerBound, m.UpperBound)
	action.Action = fmt.Sprintf("Bet %s %.1f to lock a middle on %v", m.HedgeSide, m.HedgeLine, m.WinningFinals)
	return action
}

// decided fills the action when the original wager has already settled in-game
func decided(action *Action, pick picks.Pick, snap picks.LiveSnapshot) bool {
	if snap.CurrentValue < pick.Line {
		return false
	}

	action.GapToLine = picks.Round1(snap.CurrentValue - pick.Line)
	action.ProjectedFinal = snap.CurrentValue
	action.HedgeSizing = SizingNone
	if pick.Side == picks.SideOver {
		action.Status = StatusOnTrack
		action.Rule = "already_hit"
		action.Urgency = picks.UrgencyNone
		action.HitProbability = 100
		action.Headline = "ALREADY HIT"
		action.Message = fmt.Sprintf("%s has %.0f, over %.1f is cashed", pick.PlayerName, snap.CurrentValue, pick.Line)
		action.Action = "No action needed"
		return true
	}

	action.GapToLine = picks.Round1(pick.Line - snap.CurrentValue)
	action.Status = StatusUrgent
	action.Rule = "line_exceeded"
	action.Urgency = picks.UrgencyHigh
	action.HitProbability = 0
	action.Headline = "LINE EXCEEDED"
	action.Message = fmt.Sprintf("%s has %.0f, under %.1f is lost", pick.PlayerName, snap.CurrentValue, pick.Line)
	action.Action = "Under is lost, hedging cannot recover it"
	return true
}

func derive(in Input, line float64) *evaluation {
	snap := in.Snapshot
	e := &evaluation{
		in:        in,
		side:      in.Pick.Side,
		line:      line,
		current:   snap.CurrentValue,
		remaining: in.Rotation.ExpectedRemaining,
	}

	e.rate = snap.RatePerMinute
	if e.rate <= 0 {
		e.rate = picks.SafeDiv(snap.CurrentValue, snap.MinutesPlayed)
	}

	if snap.Halftime != nil && snap.ProjectedFinal > 0 {
		e.projected = snap.ProjectedFinal
	} else {
		e.projected = e.current + e.rate*e.remaining
	}

	if e.over() {
		e.gap = e.projected - line
	} else {
		e.gap = line - e.projected
	}
	return e
}

// bucketProbability maps the favorable gap onto a base hit probability
func bucketProbability(gap float64) float64 {
	switch {
	case gap >= 5:
		return 85
	case gap >= 2:
		return 70
	case gap >= 0:
		return 55
	case gap >= -2:
		return 40
	case gap >= -5:
		return 25
	default:
		return 15
	}
}

func hitProbability(e *evaluation) float64 {
	p := bucketProbability(e.gap)
	if e.zone != nil {
		mod := picks.Clamp(*e.zone*zoneWeight, -zoneModCap, zoneModCap)
		if !e.over() {
			mod = -mod
		}
		p += mod
	}
	return picks.Clamp(picks.Round1(p), minHitProbability, maxHitProbability)
}

func thresholds(e *evaluation) Thresholds {
	t := baseThresholds
	if e.over() && e.in.Rotation.CurrentPhase == rotation.PhaseRest {
		t.Urgent += 15
		t.Alert += 15
		t.Monitor += 10
	}
	if e.over() && e.in.Rotation.ApproachingRest {
		t.Urgent += 8
		t.Alert += 8
		t.Monitor += 5
	}
	switch e.zoneEdgeForSide() {
	case 1:
		t.Urgent -= 10
		t.Alert -= 10
		t.Monitor -= 5
	case -1:
		t.Urgent += 10
		t.Alert += 10
		t.Monitor += 5
	}
	return t
}

// Size picks the hedge size from the gap and hit probability
func Size(gap, hitProb float64) (Sizing, string) {
	switch {
	case hitProb >= 70:
		return SizingNone, "No hedge needed"
	case hitProb >= 50:
		return SizingLight, fmt.Sprintf("Light hedge, about 25%% of stake (%+.1f to the line)", gap)
	case hitProb >= 30:
		return SizingModerate, fmt.Sprintf("Moderate hedge, about 50%% of stake (%+.1f to the line)", gap)
	default:
		return SizingStrong, fmt.Sprintf("Strong hedge, 75%% or more of stake (%+.1f to the line)", gap)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
