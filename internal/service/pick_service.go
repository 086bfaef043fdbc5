package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/janus/internal/cache"
	"github.com/fortuna/janus/internal/halftime"
	"github.com/fortuna/janus/internal/hedge"
	"github.com/fortuna/janus/internal/logger"
	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/quarter"
	"github.com/fortuna/janus/internal/rotation"
	"github.com/fortuna/janus/internal/shotzone"
	"github.com/fortuna/janus/internal/store"
)

var (
	// ErrInvalidPick is returned for picks missing an id, side or prop type
	ErrInvalidPick = errors.New("invalid pick")
	// ErrNoLineStore is returned when live lines are updated without a cache
	ErrNoLineStore = errors.New("live line store not configured")
)

// BaselineStore reads historical half splits
type BaselineStore interface {
	GetHalfBaseline(ctx context.Context, playerID int, prop picks.PropType) (*store.HalfBaseline, error)
}

// ProfileStore reads recent box scores
type ProfileStore interface {
	GetPlayerRecentStats(ctx context.Context, playerID int, limit int) ([]*store.PlayerGameStats, error)
}

// LineStore holds live-line overlays and the latest hedge action per pick
type LineStore interface {
	SetLiveLine(ctx context.Context, pickID string, line picks.LiveLine) error
	GetLiveLine(ctx context.Context, pickID string) (*picks.LiveLine, error)
	SetLatestHedge(ctx context.Context, action *hedge.Action) error
	GetLatestHedge(ctx context.Context, pickID string) (*hedge.Action, error)
	DeletePick(ctx context.Context, pickID string) error
}

// EventPublisher fans pipeline output out to downstream consumers
type EventPublisher interface {
	PublishHedgeAction(ctx context.Context, action *hedge.Action) error
	PublishQuarterTransition(ctx context.Context, alert *picks.QuarterTransitionAlert) error
	PublishHalftime(ctx context.Context, rec *picks.HalftimeRecalibration) error
}

// Broadcaster pushes a message to connected websocket clients
type Broadcaster interface {
	Broadcast(v interface{})
}

// Dependencies are the service's collaborators. Every field is optional; a missing
// collaborator is treated as "no data".
type Dependencies struct {
	Baselines   BaselineStore
	Profiles    ProfileStore
	Lines       LineStore
	Publisher   EventPublisher
	Broadcaster Broadcaster
	ZoneTables  *shotzone.TableCache
}

// Options tune the service
type Options struct {
	AlertTTL       time.Duration
	Workers        int
	BreakerTimeout time.Duration
}

// Evaluation is the full pipeline output for one poll of one pick
type Evaluation struct {
	Pick     picks.Pick                   `json:"pick"`
	Snapshot picks.LiveSnapshot           `json:"snapshot"`
	Rotation rotation.Estimate            `json:"rotation"`
	Quarter  quarter.Tracking             `json:"quarter"`
	Halftime *picks.HalftimeRecalibration `json:"halftime,omitempty"`
	Matchup  *shotzone.Matchup            `json:"shot_zone_matchup,omitempty"`
	Hedge    *hedge.Action                `json:"hedge_action"`

	halftimeFresh bool
}

// Notification is the websocket message carrying a hedge action
type Notification struct {
	Type      string        `json:"type"`
	PickID    string        `json:"pick_id"`
	Data      *hedge.Action `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}

// Topic scopes the notification to its pick for subscribed websocket clients
func (n Notification) Topic() string {
	return n.PickID
}

// PickService runs the live evaluation pipeline and owns per-pick tracking state
type PickService struct {
	deps     Dependencies
	detector *quarter.Detector
	tracker  *halftime.Tracker
	analyzer *shotzone.Analyzer
	breakers breakers
	workers  int
	log      logrus.FieldLogger
	now      func() time.Time

	zoneRefreshing atomic.Bool
}

// NewPickService creates the pipeline
func NewPickService(deps Dependencies, opts Options, log logrus.FieldLogger) *PickService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	svcLog := logger.WithComponent(log, "pick_service")

	return &PickService{
		deps:     deps,
		detector: quarter.NewDetector(quarter.NewAlertStore(opts.AlertTTL)),
		tracker:  halftime.NewTracker(),
		analyzer: shotzone.NewAnalyzer(deps.ZoneTables),
		breakers: newBreakers(opts.BreakerTimeout, svcLog),
		workers:  opts.Workers,
		log:      svcLog,
		now:      time.Now,
	}
}

// Alerts returns the quarter alert store for the sweep job
func (s *PickService) Alerts() *quarter.AlertStore {
	return s.detector.Store()
}

// Breakers reports the state of each circuit breaker
func (s *PickService) Breakers() []BreakerState {
	return s.breakers.states()
}

// Evaluate runs one snapshot for one pick through the pipeline
func (s *PickService) Evaluate(ctx context.Context, pick picks.Pick, snap picks.LiveSnapshot) (*Evaluation, error) {
	if err := validatePick(pick); err != nil {
		return nil, err
	}
	if snap.PickID == "" {
		snap.PickID = pick.ID
	}
	log := logger.WithPick(s.log, pick.ID)

	if pick.LiveLine == nil {
		pick.LiveLine = s.liveLine(ctx, log, pick.ID)
	}

	est := rotation.FromSnapshot(snap)

	tracking := s.detector.Observe(pick, snap, est, s.now())
	snap.QuarterTransition = tracking.Alert

	eval := &Evaluation{
		Pick:     pick,
		Rotation: est,
		Quarter:  tracking,
	}

	if snap.GameStatus == picks.StatusHalftime {
		rec, fresh := s.recalibrate(ctx, log, pick, snap)
		halftime.Merge(&snap, rec)
		eval.Halftime = rec
		eval.halftimeFresh = fresh
	}

	s.refreshStaleZones()
	if m, ok := s.analyzer.Analyze(pick); ok {
		eval.Matchup = m
	}

	eval.Hedge = hedge.Evaluate(hedge.Input{
		Pick:     pick,
		Snapshot: snap,
		Rotation: est,
		Matchup:  eval.Matchup,
	})
	eval.Snapshot = snap

	return eval, nil
}

// Process evaluates a streamed snapshot and fans the result out. Collaborator
// failures are logged; only invalid input is returned as an error.
func (s *PickService) Process(ctx context.Context, pick picks.Pick, snap picks.LiveSnapshot) error {
	eval, err := s.Evaluate(ctx, pick, snap)
	if err != nil {
		return err
	}
	log := logger.WithPick(s.log, pick.ID)
	action := eval.Hedge

	if s.deps.Lines != nil {
		if err := s.deps.Lines.SetLatestHedge(ctx, action); err != nil {
			log.WithError(err).Warn("Failed to cache hedge action")
		}
	}

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.PublishHedgeAction(ctx, action); err != nil {
			log.WithError(err).Warn("Failed to publish hedge action")
		}
		if eval.Quarter.Issued && eval.Quarter.Alert != nil {
			if err := s.deps.Publisher.PublishQuarterTransition(ctx, eval.Quarter.Alert); err != nil {
				log.WithError(err).Warn("Failed to publish quarter transition")
			}
		}
		if eval.halftimeFresh && eval.Halftime != nil {
			if err := s.deps.Publisher.PublishHalftime(ctx, eval.Halftime); err != nil {
				log.WithError(err).Warn("Failed to publish halftime recalibration")
			}
		}
	}

	if s.deps.Broadcaster != nil {
		s.deps.Broadcaster.Broadcast(Notification{
			Type:      "hedge_action",
			PickID:    pick.ID,
			Data:      action,
			Timestamp: s.now().UTC(),
		})
	}

	log.WithFields(logrus.Fields{
		"status":          action.Status,
		"rule":            action.Rule,
		"hit_probability": action.HitProbability,
	}).Debug("Evaluated pick")

	return nil
}

// UpdateLiveLine stores a live-line overlay for a pick
func (s *PickService) UpdateLiveLine(ctx context.Context, pickID string, line picks.LiveLine) error {
	if pickID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPick)
	}
	if s.deps.Lines == nil {
		return ErrNoLineStore
	}
	if line.UpdatedAt.IsZero() {
		line.UpdatedAt = s.now().UTC()
	}
	if err := s.deps.Lines.SetLiveLine(ctx, pickID, line); err != nil {
		return fmt.Errorf("storing live line: %w", err)
	}
	return nil
}

// LatestHedge returns the last cached hedge action for a pick
func (s *PickService) LatestHedge(ctx context.Context, pickID string) (*hedge.Action, error) {
	if s.deps.Lines == nil {
		return nil, cache.ErrCacheMiss
	}
	return s.deps.Lines.GetLatestHedge(ctx, pickID)
}

// Release drops all tracking state for a pick
func (s *PickService) Release(ctx context.Context, pickID string) error {
	s.detector.Store().Release(pickID)
	s.tracker.Release(pickID)

	if s.deps.Lines != nil {
		if err := s.deps.Lines.DeletePick(ctx, pickID); err != nil {
			return fmt.Errorf("deleting cached pick state: %w", err)
		}
	}
	return nil
}

// Matchup scores a player against an opponent from the cached zone tables
func (s *PickService) Matchup(playerID int, opponent string, prop picks.PropType) (*shotzone.Matchup, bool) {
	s.refreshStaleZones()
	return s.analyzer.Matchup(playerID, opponent, prop)
}

func (s *PickService) liveLine(ctx context.Context, log logrus.FieldLogger, pickID string) *picks.LiveLine {
	if s.deps.Lines == nil {
		return nil
	}
	line, err := s.deps.Lines.GetLiveLine(ctx, pickID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.WithError(err).Warn("Live line lookup failed")
		}
		return nil
	}
	return line
}

func (s *PickService) recalibrate(ctx context.Context, log logrus.FieldLogger, pick picks.Pick, snap picks.LiveSnapshot) (*picks.HalftimeRecalibration, bool) {
	if s.tracker.Done(pick.ID) {
		return s.tracker.Apply(halftime.Input{Pick: pick, Snapshot: snap})
	}

	profile := s.profile(ctx, log, pick)
	return s.tracker.Apply(halftime.Input{
		Pick:       pick,
		Snapshot:   snap,
		Baseline:   s.baseline(ctx, log, pick),
		L10Average: profile.Average,
		AvgMinutes: profile.AvgMinutes,
	})
}

func (s *PickService) baseline(ctx context.Context, log logrus.FieldLogger, pick picks.Pick) *halftime.Baseline {
	if s.deps.Baselines == nil {
		return nil
	}
	b, err := execute(s.breakers.baselines, func() (*store.HalfBaseline, error) {
		return s.deps.Baselines.GetHalfBaseline(ctx, pick.PlayerID, pick.PropType)
	})
	if err != nil {
		logMissing(log, err, "Half baseline lookup failed")
		return nil
	}
	return toBaseline(b)
}

func (s *PickService) profile(ctx context.Context, log logrus.FieldLogger, pick picks.Pick) Profile {
	empty := Profile{PlayerID: pick.PlayerID, PropType: pick.PropType}
	if s.deps.Profiles == nil {
		return empty
	}
	games, err := execute(s.breakers.profiles, func() ([]*store.PlayerGameStats, error) {
		return s.deps.Profiles.GetPlayerRecentStats(ctx, pick.PlayerID, recentGames)
	})
	if err != nil {
		logMissing(log, err, "Recent stats lookup failed")
		return empty
	}
	return BuildProfile(pick.PlayerID, pick.PropType, games)
}

func validatePick(p picks.Pick) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidPick)
	case !p.Side.Valid():
		return fmt.Errorf("%w: side %q", ErrInvalidPick, p.Side)
	case !p.PropType.Valid():
		return fmt.Errorf("%w: prop type %q", ErrInvalidPick, p.PropType)
	}
	return nil
}
