package shotzone

import "strings"

// Team is an NBA franchise
type Team struct {
	Code     string `json:"code"`
	City     string `json:"city"`
	Nickname string `json:"nickname"`
}

// FullName returns "City Nickname"
func (t Team) FullName() string {
	return t.City + " " + t.Nickname
}

var teams = []Team{
	{"ATL", "Atlanta", "Hawks"},
	{"BOS", "Boston", "Celtics"},
	{"BKN", "Brooklyn", "Nets"},
	{"CHA", "Charlotte", "Hornets"},
	{"CHI", "Chicago", "Bulls"},
	{"CLE", "Cleveland", "Cavaliers"},
	{"DAL", "Dallas", "Mavericks"},
	{"DEN", "Denver", "Nuggets"},
	{"DET", "Detroit", "Pistons"},
	{"GSW", "Golden State", "Warriors"},
	{"HOU", "Houston", "Rockets"},
	{"IND", "Indiana", "Pacers"},
	{"LAC", "Los Angeles", "Clippers"},
	{"LAL", "Los Angeles", "Lakers"},
	{"MEM", "Memphis", "Grizzlies"},
	{"MIA", "Miami", "Heat"},
	{"MIL", "Milwaukee", "Bucks"},
	{"MIN", "Minnesota", "Timberwolves"},
	{"NOP", "New Orleans", "Pelicans"},
	{"NYK", "New York", "Knicks"},
	{"OKC", "Oklahoma City", "Thunder"},
	{"ORL", "Orlando", "Magic"},
	{"PHI", "Philadelphia", "76ers"},
	{"PHX", "Phoenix", "Suns"},
	{"POR", "Portland", "Trail Blazers"},
	{"SAC", "Sacramento", "Kings"},
	{"SAS", "San Antonio", "Spurs"},
	{"TOR", "Toronto", "Raptors"},
	{"UTA", "Utah", "Jazz"},
	{"WAS", "Washington", "Wizards"},
}

// aliases are alternate names the feeds and books use
var aliases = map[string]string{
	"la clippers":  "LAC",
	"la lakers":    "LAL",
	"gs warriors":  "GSW",
	"ny knicks":    "NYK",
	"sa spurs":     "SAS",
	"sixers":       "PHI",
	"blazers":      "POR",
	"cavs":         "CLE",
	"mavs":         "DAL",
	"wolves":       "MIN",
	"nola":         "NOP",
	"okc thunder":  "OKC",
	"phoenix":      "PHX",
	"brooklyn":     "BKN",
	"golden state": "GSW",
	"gsw":          "GSW",
	"bkn":          "BKN",
	"phx":          "PHX",
	"nop":          "NOP",
	"no":           "NOP",
	"ny":           "NYK",
	"sa":           "SAS",
	"gs":           "GSW",
	"uth":          "UTA",
	"wsh":          "WAS",
}

var (
	teamsByCode     = make(map[string]Team, len(teams))
	teamsByFullName = make(map[string]Team, len(teams))
)

func init() {
	for _, t := range teams {
		teamsByCode[t.Code] = t
		teamsByFullName[strings.ToLower(t.FullName())] = t
	}
}

// Teams returns all franchises
func Teams() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

// LookupTeam returns the franchise for a canonical code
func LookupTeam(code string) (Team, bool) {
	t, ok := teamsByCode[strings.ToUpper(code)]
	return t, ok
}

// NormalizeOpponent maps a team name, nickname or code to its canonical code.
// Exact names win, then nickname matches, then the first three letters uppercased.
func NormalizeOpponent(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)

	if t, ok := teamsByCode[strings.ToUpper(name)]; ok {
		return t.Code
	}
	if t, ok := teamsByFullName[lower]; ok {
		return t.Code
	}
	if code, ok := aliases[lower]; ok {
		return code
	}

	// Word-bounded so "Nets" never matches "Hornets"
	padded := " " + lower + " "
	for _, t := range teams {
		if strings.Contains(padded, " "+strings.ToLower(t.Nickname)+" ") {
			return t.Code
		}
	}
	for alias, code := range aliases {
		if len(alias) > 3 && strings.Contains(padded, " "+alias+" ") {
			return code
		}
	}

	compact := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	if len(compact) > 3 {
		compact = compact[:3]
	}
	return compact
}
