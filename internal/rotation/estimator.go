package rotation

import (
	"fmt"
	"math"

	"github.com/fortuna/janus/internal/picks"
)

// Tier is a player's playing-time class
type Tier int

const (
	TierStar Tier = iota
	TierStarter
	TierRolePlayer
	tierCount
)

var tierNames = [...]string{
	"star",
	"starter",
	"role_player",
}

// Every tier-indexed table must have exactly tierCount entries
var _ = [1]struct{}{}[len(tierNames)-int(tierCount)]

func (t Tier) String() string {
	if t < 0 || t >= tierCount {
		return "unknown"
	}
	return tierNames[t]
}

// MarshalText implements encoding.TextMarshaler
func (t Tier) MarshalText() ([]byte, error) {
	if t < 0 || t >= tierCount {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(tierNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Tier) UnmarshalText(b []byte) error {
	for i, name := range tierNames {
		if name == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", string(b))
}

// Phase is where the player sits in the rotation right now
type Phase string

const (
	PhaseActive    Phase = "active"
	PhaseRest      Phase = "rest"
	PhaseReturning Phase = "returning"
)

// RotationPhase is the stint the player is in or waiting for
type RotationPhase string

const (
	RotationFirst  RotationPhase = "first"
	RotationSecond RotationPhase = "second"
	RotationThird  RotationPhase = "third"
	RotationFourth RotationPhase = "fourth"
	RotationCloser RotationPhase = "closer"
)

var stintPhases = [...]RotationPhase{RotationFirst, RotationSecond, RotationThird, RotationFourth}

const (
	gameMinutes      = 48.0
	quarterMinutes   = 12.0
	returnGrace      = 2.0 // minutes after a stint starts that count as "returning"
	approachLeadTime = 3.0
	closerClock      = 5.0 // final minutes of Q4

	starMinutes    = 33.0 // projected full-game minutes
	starterMinutes = 24.0
)

// window is a span of elapsed game minutes, [start, end)
type window struct {
	start, end float64
}

type pattern struct {
	stints    []window
	minuteCap float64
	closer    bool
	// Q4 multipliers on remaining minutes when the score gets out of hand
	blowoutCut, wideCut float64
}

// Stars ~37 min with one rest per half, starters ~31 min with one rest per half,
// role players ~21 min across four short stints.
var patterns = [...]pattern{
	{ // star
		stints:     []window{{0, 9}, {15, 33}, {38, 48}},
		minuteCap:  40,
		closer:     true,
		blowoutCut: 0.5,
		wideCut:    0.75,
	},
	{ // starter
		stints:     []window{{0, 7}, {15, 31}, {40, 48}},
		minuteCap:  34,
		closer:     true,
		blowoutCut: 0.5,
		wideCut:    0.75,
	},
	{ // role_player
		stints:     []window{{7, 13}, {19, 24}, {31, 37}, {44, 48}},
		minuteCap:  28,
		closer:     false,
		blowoutCut: 1,
		wideCut:    1,
	},
}

var _ = [1]struct{}{}[len(patterns)-int(tierCount)]

// Estimate is the rotation read for one snapshot. It is recomputed on every poll.
type Estimate struct {
	Tier                Tier          `json:"tier"`
	CurrentPhase        Phase         `json:"current_phase"`
	RotationPhase       RotationPhase `json:"rotation_phase"`
	ExpectedRemaining   float64       `json:"expected_remaining"`
	RestWindowRemaining float64       `json:"rest_window_remaining"`
	CloserEligible      bool          `json:"closer_eligible"`
	ApproachingRest     bool          `json:"approaching_rest"`
}

// InferTier classifies a player from minutes played, normalized to a full game
func InferTier(minutesPlayed, gameProgress float64) Tier {
	if gameProgress <= 0 || minutesPlayed <= 0 {
		return TierStarter
	}
	progress := math.Min(gameProgress, 100) / 100
	projected := minutesPlayed / progress

	switch {
	case projected >= starMinutes:
		return TierStar
	case projected >= starterMinutes:
		return TierStarter
	default:
		return TierRolePlayer
	}
}

// Project estimates the rotation state for a tier at the given game time.
// Out-of-range inputs are clamped.
func Project(tier Tier, quarter int, clockMinutesLeft float64, scoreDiff int, minutesPlayed float64) Estimate {
	if tier < 0 || tier >= tierCount {
		tier = TierStarter
	}
	p := patterns[tier]
	quarter = clampQuarter(quarter)
	clockMinutesLeft = picks.Clamp(clockMinutesLeft, 0, quarterMinutes)
	minutesPlayed = math.Max(minutesPlayed, 0)

	elapsed := float64(quarter-1)*quarterMinutes + (quarterMinutes - clockMinutesLeft)

	est := Estimate{
		Tier:           tier,
		CurrentPhase:   PhaseActive,
		CloserEligible: p.closer,
	}

	next := len(p.stints)
	for i, s := range p.stints {
		if elapsed < s.end {
			next = i
			break
		}
	}

	if next < len(p.stints) {
		s := p.stints[next]
		switch {
		case elapsed < s.start:
			est.CurrentPhase = PhaseRest
			est.RestWindowRemaining = s.start - elapsed
		case s.start > 0 && elapsed-s.start < returnGrace:
			est.CurrentPhase = PhaseReturning
		default:
			est.CurrentPhase = PhaseActive
		}
		est.ApproachingRest = elapsed >= s.start && s.end < gameMinutes && s.end-elapsed <= approachLeadTime
	}

	if p.closer && quarter == 4 && clockMinutesLeft <= closerClock {
		est.RotationPhase = RotationCloser
	} else {
		est.RotationPhase = stintPhases[min(next, len(stintPhases)-1)]
	}

	est.ExpectedRemaining = remainingMinutes(p, elapsed, quarter, scoreDiff, minutesPlayed)
	return est
}

// IsApproachingRestWindow reports whether a rest window opens within the lead time
func IsApproachingRestWindow(tier Tier, quarter int, clockMinutesLeft float64) bool {
	return Project(tier, quarter, clockMinutesLeft, 0, 0).ApproachingRest
}

// FromSnapshot infers the tier and estimates rotation directly from a live snapshot
func FromSnapshot(snap picks.LiveSnapshot) Estimate {
	tier := InferTier(snap.MinutesPlayed, snap.GameProgress)
	quarter := snap.Period
	clock, ok := picks.ClockMinutes(snap.Clock)
	switch {
	case snap.GameStatus == picks.StatusHalftime:
		quarter, clock = 2, 0
	case !ok && snap.GameStatus != picks.StatusInProgress && snap.GameStatus != picks.StatusFinal:
		// pregame or clockless feeds sit at the start of the period
		clock = quarterMinutes
	}
	return Project(tier, quarter, clock, snap.ScoreDiff, snap.MinutesPlayed)
}

func remainingMinutes(p pattern, elapsed float64, quarter, scoreDiff int, minutesPlayed float64) float64 {
	var remaining float64
	for _, s := range p.stints {
		from := math.Max(s.start, elapsed)
		if s.end > from {
			remaining += s.end - from
		}
	}

	if minutesPlayed+remaining > p.minuteCap {
		remaining = p.minuteCap - minutesPlayed
	}

	if quarter == 4 {
		diff := scoreDiff
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff >= 20:
			remaining *= p.blowoutCut
		case diff >= 15:
			remaining *= p.wideCut
		}
	}

	return math.Max(remaining, 0)
}

func clampQuarter(q int) int {
	if q < 1 {
		return 1
	}
	if q > 4 {
		return 4
	}
	return q
}
