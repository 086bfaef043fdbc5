package service

import (
	"context"
	"time"
)

// zoneRefreshTimeout bounds a background reload started from the evaluate path
const zoneRefreshTimeout = 30 * time.Second

// ZoneTablesStatus describes the loaded shot-zone tables
type ZoneTablesStatus struct {
	Players  int       `json:"players"`
	Teams    int       `json:"teams"`
	LoadedAt time.Time `json:"loaded_at"`
	Stale    bool      `json:"stale"`
}

// RefreshZoneTables reloads the shot-zone tables through the shot_zones breaker
func (s *PickService) RefreshZoneTables(ctx context.Context) error {
	if s.deps.ZoneTables == nil {
		return nil
	}
	_, err := execute(s.breakers.shotZones, func() (struct{}, error) {
		return struct{}{}, s.deps.ZoneTables.Refresh(ctx)
	})
	return err
}

// EnsureZoneTables reloads the shot-zone tables only when they are missing or
// older than their TTL
func (s *PickService) EnsureZoneTables(ctx context.Context) error {
	if s.deps.ZoneTables == nil || !s.deps.ZoneTables.Stale() {
		return nil
	}
	_, err := execute(s.breakers.shotZones, func() (struct{}, error) {
		return struct{}{}, s.deps.ZoneTables.EnsureFresh(ctx)
	})
	return err
}

// ZoneTables reports the size and age of the shot-zone tables, or nil without a cache
func (s *PickService) ZoneTables() *ZoneTablesStatus {
	tables := s.deps.ZoneTables
	if tables == nil {
		return nil
	}
	players, teams := tables.Size()
	return &ZoneTablesStatus{
		Players:  players,
		Teams:    teams,
		LoadedAt: tables.LoadedAt(),
		Stale:    tables.Stale(),
	}
}

// refreshStaleZones starts one background reload when the tables have expired.
// Lookups keep reading the old tables until the reload swaps them.
func (s *PickService) refreshStaleZones() {
	tables := s.deps.ZoneTables
	if tables == nil || !tables.Stale() {
		return
	}
	if !s.zoneRefreshing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer s.zoneRefreshing.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), zoneRefreshTimeout)
		defer cancel()
		if err := s.EnsureZoneTables(ctx); err != nil {
			logMissing(s.log, err, "Shot zone reload failed")
			return
		}
		s.log.Debug("Reloaded stale shot zone tables")
	}()
}
