package halftime

import (
	"sync"

	"github.com/fortuna/janus/internal/picks"
)

// firstHalf is the only half a recalibration is taken at
const firstHalf = 1

type trackerKey struct {
	pickID string
	half   int
}

// Tracker makes recalibration happen at most once per pick per half
type Tracker struct {
	mu      sync.Mutex
	results map[trackerKey]*picks.HalftimeRecalibration
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{results: make(map[trackerKey]*picks.HalftimeRecalibration)}
}

// Apply recalibrates the pick if the game is at halftime. A repeated call for the same
// half returns the stored result, unless that result is provisional and the new input
// carries history. The bool reports whether a new result was stored.
func (t *Tracker) Apply(in Input) (*picks.HalftimeRecalibration, bool) {
	if in.Snapshot.GameStatus != picks.StatusHalftime {
		return nil, false
	}

	key := trackerKey{pickID: in.Pick.ID, half: firstHalf}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored, ok := t.results[key]
	if ok && !Provisional(stored) {
		cp := *stored
		return &cp, false
	}

	rec := Recalibrate(in)
	if ok && Provisional(rec) {
		cp := *stored
		return &cp, false
	}
	t.results[key] = rec
	cp := *rec
	return &cp, true
}

// Done reports whether the pick already has a final recalibration.
// A provisional one does not count.
func (t *Tracker) Done(pickID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.results[trackerKey{pickID: pickID, half: firstHalf}]
	return ok && !Provisional(rec)
}

// Release forgets a pick
func (t *Tracker) Release(pickID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.results {
		if k.pickID == pickID {
			delete(t.results, k)
		}
	}
}

// Len returns the number of stored recalibrations
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}

// Merge writes the recalibrated projection and confidence into a halftime snapshot.
// Snapshots outside halftime are left alone.
func Merge(snap *picks.LiveSnapshot, rec *picks.HalftimeRecalibration) {
	if snap == nil || rec == nil || snap.GameStatus != picks.StatusHalftime {
		return
	}
	snap.ProjectedFinal = rec.RecalibratedProjection
	snap.Confidence = rec.AdjustedConfidence
	snap.Halftime = rec
}
