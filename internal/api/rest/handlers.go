package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/janus/internal/cache"
	"github.com/fortuna/janus/internal/picks"
	"github.com/fortuna/janus/internal/scheduler"
	"github.com/fortuna/janus/internal/service"
	"github.com/fortuna/janus/internal/shotzone"
)

const (
	serviceName    = "janus"
	serviceVersion = "1.0.0"

	// request body cap
	maxBodyBytes = 1 << 20
	maxBatchSize = 500

	healthTimeout = 2 * time.Second
)

// HealthChecker is a dependency that can be pinged
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SchedulerStatus reports the cron jobs' state
type SchedulerStatus interface {
	Status() []scheduler.JobStatus
	Running() bool
}

// StreamStats reports the snapshot stream consumer's counters
type StreamStats interface {
	Stats() (processed, failed int64)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	picks     *service.PickService
	scheduler SchedulerStatus
	checks    map[string]HealthChecker
	stream    StreamStats
}

// NewHandler creates a new handler. sched and checks may be nil.
func NewHandler(svc *service.PickService, sched SchedulerStatus, checks map[string]HealthChecker) *Handler {
	return &Handler{
		picks:     svc,
		scheduler: sched,
		checks:    checks,
	}
}

// WithStream adds the stream consumer's counters to the health report
func (h *Handler) WithStream(stream StreamStats) *Handler {
	h.stream = stream
	return h
}

type evaluateRequest struct {
	Pick     picks.Pick         `json:"pick"`
	Snapshot picks.LiveSnapshot `json:"snapshot"`
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]interface{}{
		"status":       status,
		"service":      serviceName,
		"version":      serviceVersion,
		"dependencies": deps,
		"breakers":     h.picks.Breakers(),
		"alerts":       h.picks.Alerts().Len(),
	}
	if zones := h.picks.ZoneTables(); zones != nil {
		body["shot_zones"] = zones
	}
	if h.stream != nil {
		processed, failed := h.stream.Stats()
		body["stream"] = map[string]int64{"processed": processed, "failed": failed}
	}

	respondJSON(w, code, body)
}

// GetTeams lists the franchises opponents are normalized to
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": shotzone.Teams(),
	})
}

// EvaluatePick runs one pick and snapshot through the pipeline
func (h *Handler) EvaluatePick(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	eval, err := h.picks.Evaluate(r.Context(), req.Pick, req.Snapshot)
	if err != nil {
		respondServiceError(w, "Failed to evaluate pick", err)
		return
	}

	respondJSON(w, http.StatusOK, eval)
}

// EvaluateBatch runs many picks through the pipeline concurrently
func (h *Handler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var jobs []service.Job
	if err := decodeBody(w, r, &jobs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(jobs) > maxBatchSize {
		respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Batch exceeds %d picks", maxBatchSize), nil)
		return
	}

	respondJSON(w, http.StatusOK, h.picks.EvaluateBatch(r.Context(), jobs))
}

// GetLatestHedge returns the last hedge action computed for a pick
func (h *Handler) GetLatestHedge(w http.ResponseWriter, r *http.Request) {
	pickID := mux.Vars(r)["pickID"]

	action, err := h.picks.LatestHedge(r.Context(), pickID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			respondError(w, http.StatusNotFound, "No hedge action for pick", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch hedge action", err)
		return
	}

	respondJSON(w, http.StatusOK, action)
}

// UpdateLiveLine stores a live-line overlay for a pick
func (h *Handler) UpdateLiveLine(w http.ResponseWriter, r *http.Request) {
	pickID := mux.Vars(r)["pickID"]

	var line picks.LiveLine
	if err := decodeBody(w, r, &line); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if line.Line <= 0 {
		respondError(w, http.StatusBadRequest, "Line must be positive", nil)
		return
	}

	if err := h.picks.UpdateLiveLine(r.Context(), pickID, line); err != nil {
		respondServiceError(w, "Failed to store live line", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pick_id":   pickID,
		"live_line": line,
	})
}

// ReleasePick drops tracking state for a pick
func (h *Handler) ReleasePick(w http.ResponseWriter, r *http.Request) {
	pickID := mux.Vars(r)["pickID"]

	if err := h.picks.Release(r.Context(), pickID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to release pick", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Pick released",
		"pick_id": pickID,
	})
}

// GetShotZoneMatchup scores a player against an opponent's zone defense
func (h *Handler) GetShotZoneMatchup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	playerID, err := strconv.Atoi(q.Get("player_id"))
	if err != nil || playerID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid player_id", err)
		return
	}
	opponent := q.Get("opponent")
	if opponent == "" {
		respondError(w, http.StatusBadRequest, "Missing opponent", nil)
		return
	}
	prop := picks.PropType(q.Get("prop_type"))
	if prop == "" {
		prop = picks.PropPoints
	}
	if !prop.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid prop_type", nil)
		return
	}

	m, ok := h.picks.Matchup(playerID, opponent, prop)
	if !ok {
		respondError(w, http.StatusNotFound, "No shot zone data for matchup", nil)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// GetSchedulerStatus reports cron job state
func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"running": false,
			"jobs":    []scheduler.JobStatus{},
		})
		return
	}

	jobs := h.scheduler.Status()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.Running(),
		"jobs":    jobs,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// respondServiceError maps service errors onto status codes
func respondServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPick):
		respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, service.ErrNoLineStore):
		respondError(w, http.StatusServiceUnavailable, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
