package batch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/config"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/store"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

type fakeChecker struct {
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeChecker) Detect(ctx context.Context, site string) types.ContactCheckResult {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return types.Error("cancelled")
		}
	}
	return types.Found("https://"+site+"/contact", "confirmed")
}

func fastConfig(batchSize int) config.BatchConfig {
	return config.BatchConfig{
		BatchSize:      batchSize,
		InterItemDelay: config.DurationFrom(time.Millisecond),
		ItemTimeout:    config.DurationFrom(time.Second),
	}
}

func TestRunner_ProcessesAllSites(t *testing.T) {
	checker := &fakeChecker{}
	s := store.NewMemoryStore()
	r := NewRunner(checker, s, fastConfig(2))

	sites := []string{"a.com", "b.com", "c.com", "d.com", "e.com"}
	results, err := r.Run(context.Background(), sites)
	require.NoError(t, err)
	assert.Len(t, results, len(sites))
	assert.Equal(t, int32(len(sites)), checker.calls.Load())

	// Results were persisted incrementally per site.
	for _, site := range sites {
		rec, err := s.Get(context.Background(), site)
		require.NoError(t, err)
		assert.Equal(t, types.StatusFound, rec.Status)
	}
}

func TestRunner_ProgressAdvances(t *testing.T) {
	checker := &fakeChecker{}
	r := NewRunner(checker, nil, fastConfig(2))

	_, err := r.Run(context.Background(), []string{"a.com", "b.com", "c.com"})
	require.NoError(t, err)

	p := r.Progress()
	assert.Equal(t, 3, p.TotalSites)
	assert.Equal(t, 3, p.Completed)
	assert.Equal(t, 2, p.TotalBatches)
	assert.Equal(t, 2, p.CurrentBatch)
	assert.Greater(t, p.Elapsed, time.Duration(0))
}

func TestRunner_CancellationKeepsPartialResults(t *testing.T) {
	checker := &fakeChecker{delay: 50 * time.Millisecond}
	r := NewRunner(checker, nil, fastConfig(1))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(75 * time.Millisecond)
		cancel()
	}()

	results, err := r.Run(ctx, []string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com"})
	assert.Error(t, err)
	assert.NotEmpty(t, results, "completed sites must be kept on cancellation")
	assert.Less(t, len(results), 6, "cancellation must stop the run early")
}

func TestChunk(t *testing.T) {
	batches := chunk([]string{"a", "b", "c", "d", "e"}, 2)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"a", "b"}, batches[0])
	assert.Equal(t, []string{"e"}, batches[2])

	assert.Nil(t, chunk(nil, 2))
}
