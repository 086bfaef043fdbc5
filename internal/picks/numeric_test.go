package picks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock string
		want  float64
	}{
		{"12:00", 12},
		{"7:30", 7.5},
		{"0:45", 0.75},
		{"30.0", 0.5},
		{"", 0},
		{"garbage", 0},
		{"-1:00", 0},
		{"1:2:3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseClock(tt.clock), 0.0001)
		})
	}
}

func TestClockMinutesReportsUnreadable(t *testing.T) {
	mins, ok := ClockMinutes("0:00")
	assert.True(t, ok)
	assert.Equal(t, 0.0, mins)

	for _, clock := range []string{"", "  ", "garbage", "-1:00", "1:2:3"} {
		_, ok := ClockMinutes(clock)
		assert.False(t, ok, clock)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(-3, 5, 95))
	assert.Equal(t, 95.0, Clamp(120, 5, 95))
	assert.Equal(t, 50.0, Clamp(50, 5, 95))
	assert.Equal(t, 5.0, Clamp(math.NaN(), 5, 95))
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 2.5, SafeDiv(10, 4))
}

func TestPickEffectiveLine(t *testing.T) {
	p := Pick{Line: 24.5}
	assert.Equal(t, 24.5, p.EffectiveLine())

	p.LiveLine = &LiveLine{Line: 27.5, Bookmaker: "fanduel"}
	assert.Equal(t, 27.5, p.EffectiveLine())
}

func TestSnapshotRiskCount(t *testing.T) {
	s := LiveSnapshot{RiskFlags: []RiskFlag{RiskBlowout, RiskFoulTrouble, RiskBlowout}}
	assert.Equal(t, 2, s.RiskCount())
	assert.True(t, s.HasRisk(RiskFoulTrouble))
	assert.False(t, s.HasRisk(RiskLowMinutes))
}

func TestPropTypeScoring(t *testing.T) {
	assert.True(t, PropPoints.IsScoring())
	assert.True(t, PropPRA.IsScoring())
	assert.False(t, PropRebounds.IsScoring())
	assert.False(t, PropType("corners").Valid())
}
