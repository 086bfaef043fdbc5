package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/store"
)

// minBaselineGames is the sample size below which no baseline is written
const minBaselineGames = 5

// allProps is the rebuild order
var allProps = []picks.PropType{
	picks.PropPoints, picks.PropRebounds, picks.PropAssists, picks.PropThrees, picks.PropSteals,
	picks.PropBlocks, picks.PropPRA, picks.PropPtsReb, picks.PropPtsAst, picks.PropRebAst,
}

// BaselineRepository handles historical half baselines
type BaselineRepository struct {
	db *store.Database
}

// NewBaselineRepository creates a new baseline repository
func NewBaselineRepository(db *store.Database) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// GetHalfBaseline returns the stored half split for a player and prop type
func (r *BaselineRepository) GetHalfBaseline(ctx context.Context, playerID int, prop picks.PropType) (*store.HalfBaseline, error) {
	query := `
		SELECT player_id, prop_type, first_half_share, first_half_rate, second_half_rate,
			games_sampled, updated_at
		FROM player_half_baselines
		WHERE player_id = $1 AND prop_type = $2
	`

	b := &store.HalfBaseline{}
	err := r.db.DB().QueryRowContext(ctx, query, playerID, string(prop)).Scan(
		&b.PlayerID, &b.PropType, &b.FirstHalfShare, &b.FirstHalfRate, &b.SecondHalfRate,
		&b.GamesSampled, &b.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("half baseline for player %d %s: %w", playerID, prop, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying half baseline: %w", err)
	}
	return b, nil
}

// RebuildHalfBaselines recomputes every player's half splits from quarter stats.
// Rates are per minute of game clock (24 per half).
func (r *BaselineRepository) RebuildHalfBaselines(ctx context.Context) (int64, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting baseline rebuild: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, prop := range allProps {
		query, err := rebuildQuery(prop)
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, query, string(prop), minBaselineGames)
		if err != nil {
			return 0, fmt.Errorf("rebuilding %s baselines: %w", prop, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting %s baselines: %w", prop, err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing baseline rebuild: %w", err)
	}
	return total, nil
}

// rebuildQuery builds the upsert for one prop. Only whitelisted column
// expressions are interpolated.
func rebuildQuery(prop picks.PropType) (string, error) {
	expr, ok := propExpression(prop)
	if !ok {
		return "", fmt.Errorf("no stat expression for prop %q", prop)
	}
	return fmt.Sprintf(`
		INSERT INTO player_half_baselines
			(player_id, prop_type, first_half_share, first_half_rate, second_half_rate, games_sampled, updated_at)
		SELECT player_id, $1,
			COALESCE(SUM(CASE WHEN quarter <= 2 THEN %[1]s END)::numeric / NULLIF(SUM(%[1]s), 0), 0.5),
			SUM(CASE WHEN quarter <= 2 THEN %[1]s ELSE 0 END)::numeric / (COUNT(DISTINCT game_id) * 24),
			SUM(CASE WHEN quarter >= 3 THEN %[1]s ELSE 0 END)::numeric / (COUNT(DISTINCT game_id) * 24),
			COUNT(DISTINCT game_id),
			NOW()
		FROM player_quarter_stats
		GROUP BY player_id
		HAVING COUNT(DISTINCT game_id) >= $2
		ON CONFLICT (player_id, prop_type) DO UPDATE SET
			first_half_share = EXCLUDED.first_half_share,
			first_half_rate = EXCLUDED.first_half_rate,
			second_half_rate = EXCLUDED.second_half_rate,
			games_sampled = EXCLUDED.games_sampled,
			updated_at = EXCLUDED.updated_at
	`, expr), nil
}
