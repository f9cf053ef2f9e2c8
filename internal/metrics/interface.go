// Per-batch timing collection and summary statistics
package metrics

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// Summary condenses the batch timings of one run. Durations are in
// milliseconds.
type Summary struct {
	Batches  int     `json:"batches"`
	Failures int     `json:"failures"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	MaxMs    float64 `json:"max_ms"`
	StdDevMs float64 `json:"stddev_ms"`
}

// Collector records how long each batch reduction took. Safe for concurrent
// use by worker goroutines.
type Collector struct {
	mu        sync.Mutex
	durations map[int]float64
	failed    map[int]error
	onBatch   func(id int, err error)
}

// NewCollector creates an empty collector. onBatch, if not nil, is called
// after every observation, outside the collector lock.
func NewCollector(onBatch func(id int, err error)) *Collector {
	return &Collector{
		durations: make(map[int]float64),
		failed:    make(map[int]error),
		onBatch:   onBatch,
	}
}

// ObserveBatch records the reduction of batch id.
func (c *Collector) ObserveBatch(id int, elapsed time.Duration, err error) {
	c.mu.Lock()
	c.durations[id] = float64(elapsed) / float64(time.Millisecond)
	if err != nil {
		c.failed[id] = err
	}
	c.mu.Unlock()

	if c.onBatch != nil {
		c.onBatch(id, err)
	}
}

// Count returns the number of observed batches.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.durations)
}

// Summary computes timing statistics over all observed batches.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	data := make(stats.Float64Data, 0, len(c.durations))
	for _, ms := range c.durations {
		data = append(data, ms)
	}
	summary := Summary{
		Batches:  len(c.durations),
		Failures: len(c.failed),
	}
	c.mu.Unlock()

	if len(data) == 0 {
		return summary
	}

	// stats only errors on empty input, which is excluded above
	summary.MeanMs, _ = stats.Mean(data)
	summary.MedianMs, _ = stats.Median(data)
	summary.P95Ms, _ = stats.Percentile(data, 95)
	summary.MaxMs, _ = stats.Max(data)
	summary.StdDevMs, _ = stats.StandardDeviation(data)
	return summary
}
