package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/janus/internal/shotzone"
	"github.com/fortuna/janus/internal/store"
)

// ShotZoneRepository bulk-loads the zone tables for the matchup cache
type ShotZoneRepository struct {
	db *store.Database
}

// NewShotZoneRepository creates a new shot zone repository
func NewShotZoneRepository(db *store.Database) *ShotZoneRepository {
	return &ShotZoneRepository{db: db}
}

// LoadPlayerZones returns every player's zone stats
func (r *ShotZoneRepository) LoadPlayerZones(ctx context.Context) ([]shotzone.PlayerZoneStat, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT player_id, zone, frequency, fg_pct FROM player_zone_stats`)
	if err != nil {
		return nil, fmt.Errorf("querying player zones: %w", err)
	}
	defer rows.Close()

	var out []shotzone.PlayerZoneStat
	for rows.Next() {
		var (
			s    shotzone.PlayerZoneStat
			zone string
		)
		if err := rows.Scan(&s.PlayerID, &zone, &s.Frequency, &s.FGPct); err != nil {
			return nil, fmt.Errorf("scanning player zone: %w", err)
		}
		if s.Zone, err = shotzone.ParseZone(zone); err != nil {
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating player zones: %w", err)
	}
	return out, nil
}

// LoadTeamDefense returns every team's zone defense
func (r *ShotZoneRepository) LoadTeamDefense(ctx context.Context) ([]shotzone.ZoneDefenseStat, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT team_code, zone, opp_fg_pct, rank FROM team_zone_defense`)
	if err != nil {
		return nil, fmt.Errorf("querying team defense: %w", err)
	}
	defer rows.Close()

	var out []shotzone.ZoneDefenseStat
	for rows.Next() {
		var (
			s    shotzone.ZoneDefenseStat
			zone string
		)
		if err := rows.Scan(&s.TeamCode, &zone, &s.OppFGPct, &s.Rank); err != nil {
			return nil, fmt.Errorf("scanning team defense: %w", err)
		}
		if s.Zone, err = shotzone.ParseZone(zone); err != nil {
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team defense: %w", err)
	}
	return out, nil
}

var _ shotzone.TableLoader = (*ShotZoneRepository)(nil)
