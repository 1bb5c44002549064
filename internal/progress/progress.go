package progress

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/domain"
)

// Stage is the phase a generation run is in.
type Stage string

// Run stages.
const (
	StageMetadata Stage = "metadata"
	StageImages   Stage = "images"
	StageDone     Stage = "done"
)

// ErrProgressComplete is returned when Advance is called after every item is counted.
var ErrProgressComplete = errors.New("progress already complete")

// ErrRunFinished is returned when a finished run is modified.
var ErrRunFinished = errors.New("run already finished")

// Snapshot is an immutable view of a run's status.
type Snapshot struct {
	RunID      uuid.UUID          `json:"run_id"`
	Section    domain.SectionName `json:"section"`
	Stage      Stage              `json:"stage"`
	Completed  int                `json:"completed"`
	Total      int                `json:"total"`
	Failed     bool               `json:"failed"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at,omitempty"`
}

// Finished reports whether the run reached a terminal state.
func (s Snapshot) Finished() bool {
	return s.Stage == StageDone || s.Failed
}

// Reporter is the status of one run.
type Reporter struct {
	mu       sync.Mutex
	snap     Snapshot
	clock    clock.Clock
	registry *Registry
}

// NewReporter creates a Reporter in the metadata stage. A nil registry is allowed.
func NewReporter(runID uuid.UUID, section domain.SectionName, total int, c clock.Clock, registry *Registry) *Reporter {
	if c == nil {
		c = clock.Real{}
	}
	r := &Reporter{
		snap: Snapshot{
			RunID:     runID,
			Section:   section,
			Stage:     StageMetadata,
			Total:     total,
			StartedAt: c.Now(),
		},
		clock:    c,
		registry: registry,
	}
	r.publish(r.snap)
	return r
}

// Snapshot returns the current status.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// SetStage moves the run to a later stage. Done is reached through Finish.
func (r *Reporter) SetStage(stage Stage) (Snapshot, error) {
	r.mu.Lock()
	if r.snap.Finished() {
		r.mu.Unlock()
		return r.Snapshot(), ErrRunFinished
	}
	r.snap.Stage = stage
	snap := r.snap
	r.mu.Unlock()

	r.publish(snap)
	return snap, nil
}

// SetTotal sets the number of items the image stage will process.
func (r *Reporter) SetTotal(total int) Snapshot {
	r.mu.Lock()
	r.snap.Total = total
	if r.snap.Completed > total {
		r.snap.Completed = total
	}
	snap := r.snap
	r.mu.Unlock()

	r.publish(snap)
	return snap
}

// Advance counts one more completed item. The counter never decreases and never
// passes Total, so it reaches Total exactly once.
func (r *Reporter) Advance() (Snapshot, error) {
	r.mu.Lock()
	if r.snap.Finished() {
		snap := r.snap
		r.mu.Unlock()
		return snap, ErrRunFinished
	}
	if r.snap.Completed >= r.snap.Total {
		snap := r.snap
		r.mu.Unlock()
		return snap, ErrProgressComplete
	}
	r.snap.Completed++
	snap := r.snap
	r.mu.Unlock()

	r.publish(snap)
	return snap, nil
}

// Finish marks the run terminal. A nil err means the run completed (stage done);
// otherwise the run failed and err is recorded.
func (r *Reporter) Finish(err error) Snapshot {
	r.mu.Lock()
	if r.snap.Finished() {
		snap := r.snap
		r.mu.Unlock()
		return snap
	}
	if err != nil {
		r.snap.Failed = true
		r.snap.Error = err.Error()
	} else {
		r.snap.Stage = StageDone
	}
	r.snap.FinishedAt = r.clock.Now()
	snap := r.snap
	r.mu.Unlock()

	r.publish(snap)
	return snap
}

func (r *Reporter) publish(snap Snapshot) {
	if r.registry != nil {
		r.registry.Record(snap)
	}
}

// Registry keeps the latest snapshot of each section.
type Registry struct {
	mu    sync.RWMutex
	byKey map[domain.SectionName]Snapshot
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[domain.SectionName]Snapshot)}
}

// Record stores snap as the latest status of its section.
func (g *Registry) Record(snap Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byKey[snap.Section] = snap
}

// Get returns the latest snapshot of a section.
func (g *Registry) Get(section domain.SectionName) (Snapshot, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snap, ok := g.byKey[section]
	return snap, ok
}

// All returns the latest snapshot of every section that has run.
func (g *Registry) All() map[domain.SectionName]Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[domain.SectionName]Snapshot, len(g.byKey))
	for k, v := range g.byKey {
		out[k] = v
	}
	return out
}
