package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

func TestTracker_Lifecycle(t *testing.T) {
	var seen []float64
	tr := NewTracker(func(p float64) { seen = append(seen, p) })
	docs := []entity.SourceDocument{textDoc("a.txt"), textDoc("b.txt")}

	tr.Start(docs)
	assert.True(t, tr.Processing())
	assert.Zero(t, tr.Progress())

	tr.MarkProcessing(docs[0].ID)
	tr.MarkCompleted(docs[0].ID)
	assert.InDelta(t, 45.0, tr.Progress(), 1e-9)

	tr.MarkFailed(docs[1].ID, errors.New("bad scan"))
	assert.InDelta(t, constants.ExtractionProgressCeiling, tr.Progress(), 1e-9)

	// settling twice is ignored
	tr.MarkCompleted(docs[1].ID)
	snap := tr.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, constants.DocStatusCompleted, snap[0].Status)
	assert.Equal(t, constants.DocStatusError, snap[1].Status)
	assert.Equal(t, "bad scan", snap[1].Error)

	tr.Complete()
	assert.False(t, tr.Processing())
	assert.Equal(t, []float64{45, 90, 100}, seen)
}

func TestTracker_FailAndReset(t *testing.T) {
	tr := NewTracker(nil)
	doc := textDoc("a.txt")
	tr.Start([]entity.SourceDocument{doc})
	tr.MarkCompleted(doc.ID)
	require.InDelta(t, 90.0, tr.Progress(), 1e-9)

	tr.Fail()
	assert.Zero(t, tr.Progress())
	assert.False(t, tr.Processing())
	assert.Len(t, tr.Snapshot(), 1)

	tr.Reset()
	assert.Empty(t, tr.Snapshot())
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := NewTracker(nil)
	doc := textDoc("a.txt")
	tr.Start([]entity.SourceDocument{doc})

	snap := tr.Snapshot()
	snap[0].Status = constants.DocStatusError
	assert.Equal(t, constants.DocStatusPending, tr.Snapshot()[0].Status)
}

func TestTracker_ConcurrentProgressIsMonotonic(t *testing.T) {
	var seen []float64
	tr := NewTracker(func(p float64) { seen = append(seen, p) })

	docs := make([]entity.SourceDocument, 50)
	for i := range docs {
		docs[i] = textDoc("doc.txt")
	}
	tr.Start(docs)

	var wg sync.WaitGroup
	for _, d := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.MarkProcessing(d.ID)
			tr.MarkCompleted(d.ID)
		}()
	}
	wg.Wait()

	require.Len(t, seen, 50)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.InDelta(t, 90.0, seen[len(seen)-1], 1e-9)
	for _, p := range seen {
		assert.LessOrEqual(t, p, constants.ExtractionProgressCeiling)
	}
}
