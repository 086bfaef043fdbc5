package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/store"
)

// StatsRepository handles player box score data access
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetPlayerRecentStats returns a player's stats for their last N games, newest first
func (r *StatsRepository) GetPlayerRecentStats(ctx context.Context, playerID int, limit int) ([]*store.PlayerGameStats, error) {
	query := `
		SELECT stat_id, game_id, player_id, team_code, opponent_code, game_date,
			points, rebounds, assists, three_pointers_made, steals, blocks,
			minutes_played, created_at
		FROM player_game_stats
		WHERE player_id = $1
		ORDER BY game_date DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent stats: %w", err)
	}
	defer rows.Close()

	var out []*store.PlayerGameStats
	for rows.Next() {
		s := &store.PlayerGameStats{}
		if err := rows.Scan(
			&s.StatID, &s.GameID, &s.PlayerID, &s.TeamCode, &s.OpponentCode, &s.GameDate,
			&s.Points, &s.Rebounds, &s.Assists, &s.ThreePointersMade, &s.Steals, &s.Blocks,
			&s.MinutesPlayed, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning player stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating player stats: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("recent stats for player %d: %w", playerID, ErrNotFound)
	}
	return out, nil
}

// StatValue returns the prop's value from a box score line
func StatValue(s *store.PlayerGameStats, prop picks.PropType) float64 {
	switch prop {
	case picks.PropPoints:
		return float64(s.Points)
	case picks.PropRebounds:
		return float64(s.Rebounds)
	case picks.PropAssists:
		return float64(s.Assists)
	case picks.PropThrees:
		return float64(s.ThreePointersMade)
	case picks.PropSteals:
		return float64(s.Steals)
	case picks.PropBlocks:
		return float64(s.Blocks)
	case picks.PropPRA:
		return float64(s.Points + s.Rebounds + s.Assists)
	case picks.PropPtsReb:
		return float64(s.Points + s.Rebounds)
	case picks.PropPtsAst:
		return float64(s.Points + s.Assists)
	case picks.PropRebAst:
		return float64(s.Rebounds + s.Assists)
	}
	return 0
}

// propExpression is the SQL for a prop's value over a stats row. Only whitelisted
// expressions are ever interpolated into queries.
func propExpression(prop picks.PropType) (string, bool) {
	switch prop {
	case picks.PropPoints:
		return "points", true
	case picks.PropRebounds:
		return "rebounds", true
	case picks.PropAssists:
		return "assists", true
	case picks.PropThrees:
		return "three_pointers_made", true
	case picks.PropSteals:
		return "steals", true
	case picks.PropBlocks:
		return "blocks", true
	case picks.PropPRA:
		return "points + rebounds + assists", true
	case picks.PropPtsReb:
		return "points + rebounds", true
	case picks.PropPtsAst:
		return "points + assists", true
	case picks.PropRebAst:
		return "rebounds + assists", true
	}
	return "", false
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
