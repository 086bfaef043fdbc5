package shotzone

import "fmt"

// Zone is a court region used to bucket shot attempts
type Zone int

const (
	ZoneRestrictedArea Zone = iota
	ZonePaint
	ZoneMidRange
	ZoneCorner3
	ZoneAboveBreak3
	zoneCount
)

var zoneNames = [...]string{
	"restricted_area",
	"paint",
	"mid_range",
	"corner_3",
	"above_break_3",
}

var _ = [1]struct{}{}[len(zoneNames)-int(zoneCount)]

// Zones lists every zone in court order
func Zones() []Zone {
	out := make([]Zone, zoneCount)
	for i := range out {
		out[i] = Zone(i)
	}
	return out
}

func (z Zone) String() string {
	if z < 0 || z >= zoneCount {
		return "unknown"
	}
	return zoneNames[z]
}

// ParseZone converts a stored zone name
func ParseZone(s string) (Zone, error) {
	for i, name := range zoneNames {
		if name == s {
			return Zone(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shot zone %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (z Zone) MarshalText() ([]byte, error) {
	if z < 0 || z >= zoneCount {
		return nil, fmt.Errorf("invalid zone %d", int(z))
	}
	return []byte(zoneNames[z]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (z *Zone) UnmarshalText(b []byte) error {
	parsed, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// Grade is a per-zone matchup verdict
type Grade int

const (
	GradeAdvantage Grade = iota
	GradeNeutral
	GradeDisadvantage
	gradeCount
)

var gradeNames = [...]string{"advantage", "neutral", "disadvantage"}

// baseImpact is the score contribution of each grade before frequency weighting
var baseImpact = [...]float64{5, 0, -5}

var (
	_ = [1]struct{}{}[len(gradeNames)-int(gradeCount)]
	_ = [1]struct{}{}[len(baseImpact)-int(gradeCount)]
)

func (g Grade) String() string {
	if g < 0 || g >= gradeCount {
		return "unknown"
	}
	return gradeNames[g]
}

// MarshalText implements encoding.TextMarshaler
func (g Grade) MarshalText() ([]byte, error) {
	if g < 0 || g >= gradeCount {
		return nil, fmt.Errorf("invalid grade %d", int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Grade) UnmarshalText(b []byte) error {
	for i, name := range gradeNames {
		if name == string(b) {
			*g = Grade(i)
			return nil
		}
	}
	return fmt.Errorf("unknown grade %q", string(b))
}

// PlayerZoneStat is a player's shooting in one zone
type PlayerZoneStat struct {
	PlayerID  int     `json:"player_id"`
	Zone      Zone    `json:"zone"`
	Frequency float64 `json:"frequency"` // share of attempts, 0-1
	FGPct     float64 `json:"fg_pct"`
}

// ZoneDefenseStat is a team's defense in one zone. Rank 1 is the stingiest.
type ZoneDefenseStat struct {
	TeamCode string  `json:"team_code"`
	Zone     Zone    `json:"zone"`
	OppFGPct float64 `json:"opp_fg_pct"`
	Rank     int     `json:"rank"`
}
