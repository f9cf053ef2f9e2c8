package metrics

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorEmptySummary(t *testing.T) {
	summary := NewCollector(nil).Summary()
	assert.Equal(t, Summary{}, summary)
}

func TestCollectorSummary(t *testing.T) {
	c := NewCollector(nil)
	for i, ms := range []int{10, 20, 30, 40} {
		c.ObserveBatch(i, time.Duration(ms)*time.Millisecond, nil)
	}
	c.ObserveBatch(4, 100*time.Millisecond, errors.New("boom"))

	summary := c.Summary()
	assert.Equal(t, 5, summary.Batches)
	assert.Equal(t, 1, summary.Failures)
	assert.InDelta(t, 40.0, summary.MeanMs, 1e-9)
	assert.InDelta(t, 30.0, summary.MedianMs, 1e-9)
	assert.InDelta(t, 100.0, summary.MaxMs, 1e-9)
	assert.Greater(t, summary.StdDevMs, 0.0)
	assert.GreaterOrEqual(t, summary.P95Ms, summary.MedianMs)
	assert.LessOrEqual(t, summary.P95Ms, summary.MaxMs)
}

func TestCollectorConcurrentObserve(t *testing.T) {
	var calls atomic.Int64
	c := NewCollector(func(int, error) { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.ObserveBatch(id, time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, c.Count())
	assert.Equal(t, int64(200), calls.Load())
}

func TestCollectorCallbackSeesError(t *testing.T) {
	var gotID int
	var gotErr error
	c := NewCollector(func(id int, err error) {
		gotID, gotErr = id, err
	})

	boom := errors.New("boom")
	c.ObserveBatch(7, time.Millisecond, boom)

	assert.Equal(t, 7, gotID)
	assert.ErrorIs(t, gotErr, boom)
}
