package shotzone

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTableTTL is how long a bulk load stays fresh
const DefaultTableTTL = time.Hour

// TableLoader bulk-loads the zone tables
type TableLoader interface {
	LoadPlayerZones(ctx context.Context) ([]PlayerZoneStat, error)
	LoadTeamDefense(ctx context.Context) ([]ZoneDefenseStat, error)
}

type tables struct {
	players  map[int]map[Zone]PlayerZoneStat
	defense  map[string]map[Zone]ZoneDefenseStat
	loadedAt time.Time
}

// TableCache holds the player-zone and team-defense tables between refreshes.
// Lookups never hit the loader; Refresh swaps both tables at once.
type TableCache struct {
	loader TableLoader
	ttl    time.Duration
	now    func() time.Time

	refreshMu sync.Mutex
	mu        sync.RWMutex
	current   *tables
}

// NewTableCache creates an empty cache over loader
func NewTableCache(loader TableLoader, ttl time.Duration) *TableCache {
	if ttl <= 0 {
		ttl = DefaultTableTTL
	}
	return &TableCache{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Refresh reloads both tables. On error the previous tables stay in place.
func (c *TableCache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	playerRows, err := c.loader.LoadPlayerZones(ctx)
	if err != nil {
		return fmt.Errorf("failed to load player zones: %w", err)
	}
	defenseRows, err := c.loader.LoadTeamDefense(ctx)
	if err != nil {
		return fmt.Errorf("failed to load team defense: %w", err)
	}

	next := &tables{
		players:  make(map[int]map[Zone]PlayerZoneStat),
		defense:  make(map[string]map[Zone]ZoneDefenseStat),
		loadedAt: c.now(),
	}
	for _, row := range playerRows {
		zones, ok := next.players[row.PlayerID]
		if !ok {
			zones = make(map[Zone]PlayerZoneStat, zoneCount)
			next.players[row.PlayerID] = zones
		}
		zones[row.Zone] = row
	}
	for _, row := range defenseRows {
		code := NormalizeOpponent(row.TeamCode)
		row.TeamCode = code
		zones, ok := next.defense[code]
		if !ok {
			zones = make(map[Zone]ZoneDefenseStat, zoneCount)
			next.defense[code] = zones
		}
		zones[row.Zone] = row
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return nil
}

// EnsureFresh refreshes when the tables are missing or older than the TTL
func (c *TableCache) EnsureFresh(ctx context.Context) error {
	if !c.Stale() {
		return nil
	}
	return c.Refresh(ctx)
}

// Stale reports whether the tables need a reload
func (c *TableCache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current == nil || c.now().Sub(c.current.loadedAt) >= c.ttl
}

// LoadedAt returns when the current tables were loaded (zero if never)
func (c *TableCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return time.Time{}
	}
	return c.current.loadedAt
}

// Size returns the number of players and teams loaded
func (c *TableCache) Size() (players, teams int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return 0, 0
	}
	return len(c.current.players), len(c.current.defense)
}

// PlayerZones returns a player's zone stats. The map must not be modified.
func (c *TableCache) PlayerZones(playerID int) (map[Zone]PlayerZoneStat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, false
	}
	zones, ok := c.current.players[playerID]
	return zones, ok
}

// TeamDefense returns a team's zone defense by canonical code. The map must not be modified.
func (c *TableCache) TeamDefense(code string) (map[Zone]ZoneDefenseStat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, false
	}
	zones, ok := c.current.defense[code]
	return zones, ok
}
