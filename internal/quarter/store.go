package quarter

import (
	"sync"
	"time"

	"github.com/fortuna/janus/internal/picks"
)

const (
	// DefaultTTL is how long a transition alert stays attached to its pick
	DefaultTTL = 3 * time.Minute
	// SweepInterval is the cadence callers should run Sweep at
	SweepInterval = 30 * time.Second
)

// entry is the per-pick tracking state
type entry struct {
	lastQuarter    int
	halftimeIssued bool
	alert          *picks.QuarterTransitionAlert
}

// AlertStore holds the last-seen quarter and the current transition alert per pick.
// It is owned by the caller; evaluations of different picks never share an entry.
type AlertStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
}

// NewAlertStore creates a store whose alerts expire after ttl
func NewAlertStore(ttl time.Duration) *AlertStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AlertStore{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// TTL returns the alert lifetime
func (s *AlertStore) TTL() time.Duration {
	return s.ttl
}

// Sweep evicts alerts whose TTL has elapsed and returns how many were dropped.
// Quarter tracking survives the sweep.
func (s *AlertStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for _, e := range s.entries {
		if e.alert != nil && !now.Before(e.alert.ExpiresAt) {
			e.alert = nil
			evicted++
		}
	}
	return evicted
}

// Active returns a copy of the pick's unexpired alert, or nil
func (s *AlertStore) Active(pickID string, now time.Time) *picks.QuarterTransitionAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[pickID]
	if !ok {
		return nil
	}
	return activeAlert(e, now)
}

// LastQuarter returns the highest quarter seen for a pick (0 if untracked)
func (s *AlertStore) LastQuarter(pickID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[pickID]; ok {
		return e.lastQuarter
	}
	return 0
}

// Release drops all state for a pick that is no longer tracked
func (s *AlertStore) Release(pickID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, pickID)
}

// Len returns the number of cached alerts
func (s *AlertStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if e.alert != nil {
			n++
		}
	}
	return n
}

// update runs fn against the pick's entry under the store lock
func (s *AlertStore) update(pickID string, fn func(e *entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[pickID]
	if !ok {
		e = &entry{}
		s.entries[pickID] = e
	}
	fn(e)
}

func activeAlert(e *entry, now time.Time) *picks.QuarterTransitionAlert {
	if e.alert == nil || !now.Before(e.alert.ExpiresAt) {
		return nil
	}
	a := *e.alert
	return &a
}
