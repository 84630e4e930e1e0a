package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// ProgressFunc receives every progress change, already clamped and monotonic.
// It runs under the tracker's lock and must not call back into the Tracker.
type ProgressFunc func(percent float64)

// Tracker records per-document status and overall progress for one run.
// It is the only state shared between extraction tasks.
type Tracker struct {
	mu         sync.Mutex
	order      []uuid.UUID
	statuses   map[uuid.UUID]entity.DocumentStatus
	completed  int
	progress   float64
	processing bool
	onProgress ProgressFunc
}

func NewTracker(onProgress ProgressFunc) *Tracker {
	return &Tracker{
		statuses:   make(map[uuid.UUID]entity.DocumentStatus),
		onProgress: onProgress,
	}
}

// Start registers the run's documents as pending and resets progress to zero.
func (t *Tracker) Start(docs []entity.SourceDocument) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
	t.processing = true
	for _, d := range docs {
		t.order = append(t.order, d.ID)
		t.statuses[d.ID] = entity.DocumentStatus{
			DocumentID: d.ID,
			Filename:   d.Filename,
			Status:     constants.DocStatusPending,
		}
	}
}

// MarkProcessing moves a document from pending to processing.
func (t *Tracker) MarkProcessing(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.statuses[id]
	if !ok || st.Status.Terminal() {
		return
	}
	st.Status = constants.DocStatusProcessing
	t.statuses[id] = st
}

// MarkCompleted settles a document as completed and advances progress.
func (t *Tracker) MarkCompleted(id uuid.UUID) {
	t.settle(id, constants.DocStatusCompleted, "")
}

// MarkFailed settles a document as errored and advances progress.
func (t *Tracker) MarkFailed(id uuid.UUID, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.settle(id, constants.DocStatusError, msg)
}

func (t *Tracker) settle(id uuid.UUID, status constants.DocStatus, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.statuses[id]
	if !ok || st.Status.Terminal() {
		return
	}
	st.Status = status
	st.Error = msg
	t.statuses[id] = st
	t.completed++
	t.advanceLocked(float64(t.completed) / float64(len(t.order)) * constants.ExtractionProgressCeiling)
}

// Complete marks the run finished at 100%.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processing = false
	t.advanceLocked(constants.ProgressComplete)
}

// Fail abandons the run; progress returns to idle so the run can be retried.
func (t *Tracker) Fail() {
	t.mu.Lock()
	t.processing = false
	t.progress = 0
	t.mu.Unlock()
}

// Reset restores the idle state and forgets every document.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

// Progress reports the current percentage in [0, 100].
func (t *Tracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Processing reports whether a run is in flight.
func (t *Tracker) Processing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processing
}

// Snapshot returns a copy of document statuses in registration order.
func (t *Tracker) Snapshot() []entity.DocumentStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.DocumentStatus, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.statuses[id])
	}
	return out
}

func (t *Tracker) advanceLocked(p float64) {
	p = min(p, constants.ProgressComplete)
	if p <= t.progress {
		return
	}
	t.progress = p
	if t.onProgress != nil {
		t.onProgress(p)
	}
}

func (t *Tracker) resetLocked() {
	t.order = nil
	t.statuses = make(map[uuid.UUID]entity.DocumentStatus)
	t.completed = 0
	t.progress = 0
	t.processing = false
}
