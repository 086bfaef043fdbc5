package store

import (
	"database/sql"
	"time"
)

// PlayerGameStats is one player's final box score line for a game
type PlayerGameStats struct {
	StatID            int64           `json:"stat_id" db:"stat_id"`
	GameID            string          `json:"game_id" db:"game_id"`
	PlayerID          int             `json:"player_id" db:"player_id"`
	TeamCode          string          `json:"team_code" db:"team_code"`
	OpponentCode      string          `json:"opponent_code" db:"opponent_code"`
	GameDate          time.Time       `json:"game_date" db:"game_date"`
	Points            int             `json:"points" db:"points"`
	Rebounds          int             `json:"rebounds" db:"rebounds"`
	Assists           int             `json:"assists" db:"assists"`
	ThreePointersMade int             `json:"three_pointers_made" db:"three_pointers_made"`
	Steals            int             `json:"steals" db:"steals"`
	Blocks            int             `json:"blocks" db:"blocks"`
	MinutesPlayed     sql.NullFloat64 `json:"minutes_played,omitempty" db:"minutes_played"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// HalfBaseline is a player's historical first/second half split for one prop type
type HalfBaseline struct {
	PlayerID       int       `json:"player_id" db:"player_id"`
	PropType       string    `json:"prop_type" db:"prop_type"`
	FirstHalfShare float64   `json:"first_half_share" db:"first_half_share"`
	FirstHalfRate  float64   `json:"first_half_rate" db:"first_half_rate"`
	SecondHalfRate float64   `json:"second_half_rate" db:"second_half_rate"`
	GamesSampled   int       `json:"games_sampled" db:"games_sampled"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
