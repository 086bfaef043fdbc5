package rotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/janus/internal/picks"
)

func TestInferTier(t *testing.T) {
	tests := []struct {
		name     string
		minutes  float64
		progress float64
		want     Tier
	}{
		{"heavy minutes at half", 20, 50, TierStar},
		{"starter minutes at half", 15, 50, TierStarter},
		{"bench minutes at half", 10, 50, TierRolePlayer},
		{"no progress defaults to starter", 0, 0, TierStarter},
		{"progress over 100 is capped", 36, 150, TierStar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferTier(tt.minutes, tt.progress))
		})
	}
}

func TestEstimatePhases(t *testing.T) {
	tests := []struct {
		name         string
		tier         Tier
		quarter      int
		clock        float64
		wantPhase    Phase
		wantRotation RotationPhase
		wantRestLeft float64
		wantApproach bool
	}{
		{"star tip-off", TierStar, 1, 12, PhaseActive, RotationFirst, 0, false},
		{"star nearing first rest", TierStar, 1, 4, PhaseActive, RotationFirst, 0, true},
		{"star on bench late Q1", TierStar, 1, 2, PhaseRest, RotationSecond, 5, false},
		{"star just checked back in", TierStar, 2, 8, PhaseReturning, RotationSecond, 0, false},
		{"role player waits for first stint", TierRolePlayer, 1, 10, PhaseRest, RotationFirst, 5, false},
		{"role player mid fourth stint", TierRolePlayer, 4, 2, PhaseActive, RotationFourth, 0, false},
		{"starter closes the game", TierStarter, 4, 4, PhaseActive, RotationCloser, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Project(tt.tier, tt.quarter, tt.clock, 0, 0)
			assert.Equal(t, tt.wantPhase, est.CurrentPhase)
			assert.Equal(t, tt.wantRotation, est.RotationPhase)
			assert.InDelta(t, tt.wantRestLeft, est.RestWindowRemaining, 0.001)
			assert.Equal(t, tt.wantApproach, est.ApproachingRest)
		})
	}
}

func TestEstimateExpectedRemaining(t *testing.T) {
	t.Run("full game for a star", func(t *testing.T) {
		est := Project(TierStar, 1, 12, 0, 0)
		assert.InDelta(t, 37, est.ExpectedRemaining, 0.001)
	})

	t.Run("capped by tier minutes", func(t *testing.T) {
		est := Project(TierStarter, 3, 12, 0, 30)
		assert.InDelta(t, 4, est.ExpectedRemaining, 0.001)
	})

	t.Run("blowout in the fourth cuts star minutes", func(t *testing.T) {
		est := Project(TierStar, 4, 3, 25, 30)
		assert.InDelta(t, 1.5, est.ExpectedRemaining, 0.001)
	})

	t.Run("wide margin in the fourth", func(t *testing.T) {
		est := Project(TierStar, 4, 3, -16, 30)
		assert.InDelta(t, 2.25, est.ExpectedRemaining, 0.001)
	})

	t.Run("blowout does not cut role players", func(t *testing.T) {
		est := Project(TierRolePlayer, 4, 4, 25, 10)
		assert.InDelta(t, 4, est.ExpectedRemaining, 0.001)
	})

	t.Run("minutes past the cap never go negative", func(t *testing.T) {
		est := Project(TierRolePlayer, 2, 6, 0, 35)
		assert.Equal(t, 0.0, est.ExpectedRemaining)
	})
}

func TestEstimateClampsOutOfDomain(t *testing.T) {
	est := Project(TierStar, 7, -3, 0, -10)
	assert.Equal(t, 0.0, est.ExpectedRemaining)
	assert.Equal(t, PhaseActive, est.CurrentPhase)

	early := Project(TierStar, 0, 20, 0, 0)
	assert.Equal(t, Project(TierStar, 1, 12, 0, 0), early)

	unknown := Project(Tier(42), 1, 12, 0, 0)
	assert.Equal(t, TierStarter, unknown.Tier)
}

func TestIsApproachingRestWindow(t *testing.T) {
	assert.True(t, IsApproachingRestWindow(TierStarter, 1, 7))
	assert.False(t, IsApproachingRestWindow(TierStarter, 1, 11))
	// The last stint runs to the buzzer, there is no rest to approach
	assert.False(t, IsApproachingRestWindow(TierStar, 4, 1))
}

func TestFromSnapshotAtHalftime(t *testing.T) {
	snap := picks.LiveSnapshot{
		MinutesPlayed: 18,
		GameProgress:  50,
		Period:        2,
		Clock:         "0:00",
		GameStatus:    picks.StatusHalftime,
	}
	est := FromSnapshot(snap)
	assert.Equal(t, TierStar, est.Tier)
	assert.Equal(t, Project(TierStar, 2, 0, 0, 18), est)
}

func TestFromSnapshotWithoutClock(t *testing.T) {
	pregame := picks.LiveSnapshot{Period: 0, GameStatus: picks.StatusScheduled}
	est := FromSnapshot(pregame)
	assert.Equal(t, Project(TierStarter, 1, 12, 0, 0), est)
	assert.Equal(t, RotationFirst, est.RotationPhase)
	assert.Equal(t, PhaseActive, est.CurrentPhase)

	clockless := picks.LiveSnapshot{Period: 3, GameStatus: "", MinutesPlayed: 20, GameProgress: 50}
	assert.Equal(t, Project(TierStar, 3, 12, 0, 20), FromSnapshot(clockless))

	// a running game keeps the feed's reading
	live := picks.LiveSnapshot{Period: 1, Clock: "bad", GameStatus: picks.StatusInProgress}
	assert.Equal(t, Project(TierStarter, 1, 0, 0, 0), FromSnapshot(live))
}

func TestTierJSON(t *testing.T) {
	b, err := json.Marshal(Project(TierRolePlayer, 1, 12, 0, 0))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tier":"role_player"`)

	var out struct {
		Tier Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"star"}`), &out))
	assert.Equal(t, TierStar, out.Tier)
	assert.Error(t, json.Unmarshal([]byte(`{"tier":"mvp"}`), &out))
}
