package service

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/fortuna/janus/internal/hedge"
	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/store"
)

type mockBaselines struct {
	mock.Mock
}

func (m *mockBaselines) GetHalfBaseline(ctx context.Context, playerID int, prop picks.PropType) (*store.HalfBaseline, error) {
	args := m.Called(ctx, playerID, prop)
	b, _ := args.Get(0).(*store.HalfBaseline)
	return b, args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetPlayerRecentStats(ctx context.Context, playerID int, limit int) ([]*store.PlayerGameStats, error) {
	args := m.Called(ctx, playerID, limit)
	games, _ := args.Get(0).([]*store.PlayerGameStats)
	return games, args.Error(1)
}

type mockLines struct {
	mock.Mock
}

func (m *mockLines) SetLiveLine(ctx context.Context, pickID string, line picks.LiveLine) error {
	return m.Called(ctx, pickID, line).Error(0)
}

func (m *mockLines) GetLiveLine(ctx context.Context, pickID string) (*picks.LiveLine, error) {
	args := m.Called(ctx, pickID)
	line, _ := args.Get(0).(*picks.LiveLine)
	return line, args.Error(1)
}

func (m *mockLines) SetLatestHedge(ctx context.Context, action *hedge.Action) error {
	return m.Called(ctx, action).Error(0)
}

func (m *mockLines) GetLatestHedge(ctx context.Context, pickID string) (*hedge.Action, error) {
	args := m.Called(ctx, pickID)
	action, _ := args.Get(0).(*hedge.Action)
	return action, args.Error(1)
}

func (m *mockLines) DeletePick(ctx context.Context, pickID string) error {
	return m.Called(ctx, pickID).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishHedgeAction(ctx context.Context, action *hedge.Action) error {
	return m.Called(ctx, action).Error(0)
}

func (m *mockPublisher) PublishQuarterTransition(ctx context.Context, alert *picks.QuarterTransitionAlert) error {
	return m.Called(ctx, alert).Error(0)
}

func (m *mockPublisher) PublishHalftime(ctx context.Context, rec *picks.HalftimeRecalibration) error {
	return m.Called(ctx, rec).Error(0)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(v interface{}) {
	m.Called(v)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(deps Dependencies) *PickService {
	svc := NewPickService(deps, Options{
		AlertTTL:       3 * time.Minute,
		Workers:        4,
		BreakerTimeout: time.Second,
	}, quietLogger())
	fixed := time.Date(2026, 1, 15, 2, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}
