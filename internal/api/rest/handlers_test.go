package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/janus/internal/cache"
	"github.com/fortuna/janus/internal/hedge"
	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/scheduler"
	"github.com/fortuna/janus/internal/service"
	"github.com/fortuna/janus/internal/shotzone"
)

type memoryLines struct {
	mu     sync.Mutex
	lines  map[string]picks.LiveLine
	hedges map[string]*hedge.Action
}

func newMemoryLines() *memoryLines {
	return &memoryLines{lines: map[string]picks.LiveLine{}, hedges: map[string]*hedge.Action{}}
}

func (m *memoryLines) SetLiveLine(_ context.Context, pickID string, line picks.LiveLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[pickID] = line
	return nil
}

func (m *memoryLines) GetLiveLine(_ context.Context, pickID string) (*picks.LiveLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, ok := m.lines[pickID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &line, nil
}

func (m *memoryLines) SetLatestHedge(_ context.Context, action *hedge.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hedges[action.PickID] = action
	return nil
}

func (m *memoryLines) GetLatestHedge(_ context.Context, pickID string) (*hedge.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	action, ok := m.hedges[pickID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return action, nil
}

func (m *memoryLines) DeletePick(_ context.Context, pickID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, pickID)
	delete(m.hedges, pickID)
	return nil
}

type zoneLoader struct{}

func (zoneLoader) LoadPlayerZones(context.Context) ([]shotzone.PlayerZoneStat, error) {
	return []shotzone.PlayerZoneStat{
		{PlayerID: 2544, Zone: shotzone.ZoneRestrictedArea, Frequency: 0.6, FGPct: 0.70},
		{PlayerID: 2544, Zone: shotzone.ZoneMidRange, Frequency: 0.4, FGPct: 0.45},
	}, nil
}

func (zoneLoader) LoadTeamDefense(context.Context) ([]shotzone.ZoneDefenseStat, error) {
	return []shotzone.ZoneDefenseStat{
		{TeamCode: "BOS", Zone: shotzone.ZoneRestrictedArea, OppFGPct: 0.62, Rank: 15},
		{TeamCode: "BOS", Zone: shotzone.ZoneMidRange, OppFGPct: 0.44, Rank: 14},
	}, nil
}

type fakeScheduler struct{}

func (fakeScheduler) Status() []scheduler.JobStatus {
	return []scheduler.JobStatus{
		{Name: scheduler.JobZoneRefresh, Schedule: "@every 1h", Runs: 1},
		{Name: scheduler.JobAlertSweep, Schedule: "@every 30s", Runs: 4},
	}
}

func (fakeScheduler) Running() bool { return true }

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type fakeStream struct{}

func (fakeStream) Stats() (int64, int64) { return 12, 1 }

type testEnv struct {
	router  http.Handler
	handler *Handler
	lines   *memoryLines
}

func newTestEnv(t *testing.T, checks map[string]HealthChecker, sched SchedulerStatus) testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	tables := shotzone.NewTableCache(zoneLoader{}, time.Hour)
	require.NoError(t, tables.Refresh(context.Background()))

	lines := newMemoryLines()
	svc := service.NewPickService(service.Dependencies{Lines: lines, ZoneTables: tables},
		service.Options{AlertTTL: 3 * time.Minute, Workers: 2, BreakerTimeout: time.Second}, log)

	handler := NewHandler(svc, sched, checks)
	return testEnv{
		router:  NewRouter(handler, []string{"https://app.fortuna.bet"}, log),
		handler: handler,
		lines:   lines,
	}
}

func (e testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func samplePick(id string) picks.Pick {
	return picks.Pick{
		ID:         id,
		PlayerID:   2544,
		PlayerName: "LeBron James",
		PropType:   picks.PropPoints,
		Line:       25.5,
		Side:       picks.SideOver,
		Opponent:   "Boston Celtics",
	}
}

func sampleSnapshot() picks.LiveSnapshot {
	return picks.LiveSnapshot{
		CurrentValue:  14,
		GameProgress:  50,
		Period:        3,
		Clock:         "11:00",
		GameStatus:    picks.StatusInProgress,
		MinutesPlayed: 18,
		RatePerMinute: 0.78,
		Confidence:    62,
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, map[string]HealthChecker{
		"redis": checkFunc(func(context.Context) error { return nil }),
	}, nil)

	rec := env.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "janus", body["service"])
	assert.Equal(t, map[string]interface{}{"redis": "ok"}, body["dependencies"])
	assert.Len(t, body["breakers"], 3)
}

func TestHealthCheckReportsZonesAndStream(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.handler.WithStream(fakeStream{})

	rec := env.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	zones, ok := body["shot_zones"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, zones["players"])
	assert.EqualValues(t, 1, zones["teams"])
	assert.Equal(t, false, zones["stale"])
	assert.NotEmpty(t, zones["loaded_at"])
	assert.Equal(t, map[string]interface{}{"processed": 12.0, "failed": 1.0}, body["stream"])
}

func TestGetTeams(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodGet, "/api/v1/teams", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Teams []shotzone.Team `json:"teams"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Teams, 30)
	assert.Contains(t, body.Teams, shotzone.Team{Code: "BOS", City: "Boston", Nickname: "Celtics"})
}

func TestHealthCheckDegraded(t *testing.T) {
	env := newTestEnv(t, map[string]HealthChecker{
		"database": checkFunc(func(context.Context) error { return errors.New("connection refused") }),
	}, nil)

	rec := env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode(t, rec)["status"])
}

func TestEvaluatePick(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodPost, "/api/v1/picks/evaluate", map[string]interface{}{
		"pick":     samplePick("p1"),
		"snapshot": sampleSnapshot(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var eval service.Evaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	require.NotNil(t, eval.Hedge)
	assert.Equal(t, "p1", eval.Hedge.PickID)
	assert.NotEmpty(t, eval.Hedge.Status)
	require.NotNil(t, eval.Matchup)
	assert.Equal(t, "BOS", eval.Matchup.Opponent)
	assert.Equal(t, "p1", eval.Snapshot.PickID)
}

func TestEvaluatePickRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodPost, "/api/v1/picks/evaluate", `{"pick":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	pick := samplePick("p1")
	pick.Side = ""
	rec = env.do(http.MethodPost, "/api/v1/picks/evaluate", map[string]interface{}{
		"pick":     pick,
		"snapshot": sampleSnapshot(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["details"], "invalid pick")
}

func TestEvaluateBatch(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	jobs := []service.Job{
		{Pick: samplePick("p1"), Snapshot: sampleSnapshot()},
		{Pick: samplePick(""), Snapshot: sampleSnapshot()},
		{Pick: samplePick("p3"), Snapshot: sampleSnapshot()},
	}
	rec := env.do(http.MethodPost, "/api/v1/picks/evaluate/batch", jobs)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []service.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].PickID)
	assert.NotNil(t, results[0].Evaluation)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, "p3", results[2].PickID)
}

func TestLatestHedge(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodGet, "/api/v1/picks/p1/hedge", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, env.lines.SetLatestHedge(context.Background(), &hedge.Action{PickID: "p1", Status: hedge.StatusAlert}))

	rec = env.do(http.MethodGet, "/api/v1/picks/p1/hedge", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alert", decode(t, rec)["status"])
}

func TestUpdateLiveLineAndRelease(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodPut, "/api/v1/picks/p1/live-line", picks.LiveLine{Line: 28.5, Bookmaker: "fanduel"})
	require.Equal(t, http.StatusOK, rec.Code)

	line, err := env.lines.GetLiveLine(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 28.5, line.Line)
	assert.False(t, line.UpdatedAt.IsZero())

	// the overlay now opens a middle on evaluation
	rec = env.do(http.MethodPost, "/api/v1/picks/evaluate", map[string]interface{}{
		"pick":     samplePick("p1"),
		"snapshot": sampleSnapshot(),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var eval service.Evaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, hedge.StatusProfitLock, eval.Hedge.Status)

	rec = env.do(http.MethodDelete, "/api/v1/picks/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = env.lines.GetLiveLine(context.Background(), "p1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestUpdateLiveLineValidates(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodPut, "/api/v1/picks/p1/live-line", picks.LiveLine{Line: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/v1/picks/p1/live-line", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShotZoneMatchup(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodGet, "/api/v1/matchups/shot-zone?player_id=2544&opponent=Celtics&prop_type=points", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "BOS", body["opponent"])
	assert.Equal(t, "Boston Celtics", body["opponent_name"])
	assert.Equal(t, "restricted_area", body["primary_zone"])

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"missing player", "opponent=BOS", http.StatusBadRequest},
		{"bad player", "player_id=abc&opponent=BOS", http.StatusBadRequest},
		{"missing opponent", "player_id=2544", http.StatusBadRequest},
		{"bad prop", "player_id=2544&opponent=BOS&prop_type=dunks", http.StatusBadRequest},
		{"unknown player", "player_id=1&opponent=BOS", http.StatusNotFound},
		{"unknown team", "player_id=2544&opponent=Lakers", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/api/v1/matchups/shot-zone?"+tt.query, nil)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestSchedulerStatus(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/api/v1/scheduler/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["running"])

	env = newTestEnv(t, nil, fakeScheduler{})
	rec = env.do(http.MethodGet, "/api/v1/scheduler/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["running"])
	jobs := body["jobs"].([]interface{})
	require.Len(t, jobs, 2)
	assert.Equal(t, scheduler.JobAlertSweep, jobs[0].(map[string]interface{})["name"])
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/api/v1/games/live", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
