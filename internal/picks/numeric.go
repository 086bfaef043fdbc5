package picks

import (
	"math"
	"strconv"
	"strings"
)

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SafeDiv performs division with zero check
func SafeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ParseClock converts a game clock like "7:32" or "45.2" into minutes left in
// the period. Unparseable clocks return 0.
func ParseClock(clock string) float64 {
	mins, _ := ClockMinutes(clock)
	return mins
}

// ClockMinutes is ParseClock that also reports whether the clock was readable
func ClockMinutes(clock string) (float64, bool) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0, false
	}

	parts := strings.Split(clock, ":")
	switch len(parts) {
	case 1:
		// Under a minute the feed drops the minutes field
		secs, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || secs < 0 {
			return 0, false
		}
		return secs / 60, true
	case 2:
		mins, err := strconv.Atoi(parts[0])
		if err != nil || mins < 0 {
			return 0, false
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || secs < 0 {
			return 0, false
		}
		return float64(mins) + secs/60, true
	}
	return 0, false
}
