// Index-addressed table of reduced columns
package core

import (
	"fmt"
	"sync/atomic"

	"gocv.io/x/gocv"
)

type slot struct {
	column gocv.Mat
	err    error
	writes atomic.Int32
}

// ResultTable holds one reduced column (or one error) per batch id. It is
// sized before any batch is submitted and each slot is written by exactly
// one task, so slot contents need no lock. Only the counters are shared.
//
// Reading slots is safe once every writer has finished, i.e. after the
// worker pool drained.
type ResultTable struct {
	slots     []slot
	completed atomic.Int64
}

// NewResultTable allocates a table with n empty slots.
func NewResultTable(n int) *ResultTable {
	return &ResultTable{slots: make([]slot, n)}
}

// Len returns the number of slots.
func (t *ResultTable) Len() int {
	return len(t.slots)
}

// Store records the reduced column for batch id. The table takes ownership of
// column; on error the caller keeps it.
func (t *ResultTable) Store(id int, column gocv.Mat) error {
	s, err := t.claim(id)
	if err != nil {
		return err
	}
	s.column = column
	t.completed.Add(1)
	return nil
}

// Fail records err against batch id.
func (t *ResultTable) Fail(id int, err error) error {
	s, claimErr := t.claim(id)
	if claimErr != nil {
		return claimErr
	}
	s.err = &BatchError{ID: id, Err: err}
	t.completed.Add(1)
	return nil
}

func (t *ResultTable) claim(id int) (*slot, error) {
	if id < 0 || id >= len(t.slots) {
		return nil, fmt.Errorf("batch id %d outside result table of %d slots", id, len(t.slots))
	}
	s := &t.slots[id]
	if s.writes.Add(1) > 1 {
		return nil, fmt.Errorf("%w: batch %d", ErrSlotWritten, id)
	}
	return s, nil
}

// Completed returns how many slots hold a column or an error.
func (t *ResultTable) Completed() int {
	return int(t.completed.Load())
}

// Writes returns how many times slot id was claimed, including rejected
// second writes.
func (t *ResultTable) Writes(id int) int {
	return int(t.slots[id].writes.Load())
}

// Column returns the column stored for id, or the recorded error.
func (t *ResultTable) Column(id int) (gocv.Mat, error) {
	s := &t.slots[id]
	if s.err != nil {
		return gocv.Mat{}, s.err
	}
	if s.writes.Load() == 0 {
		return gocv.Mat{}, &BatchError{ID: id, Err: fmt.Errorf("%w: slot never written", ErrReductionFailure)}
	}
	return s.column, nil
}

// Err returns the failure of the lowest failed batch id, or nil.
func (t *ResultTable) Err() error {
	for id := range t.slots {
		if _, err := t.Column(id); err != nil {
			return err
		}
	}
	return nil
}

// Failures returns every recorded batch error in id order.
func (t *ResultTable) Failures() []*BatchError {
	var failures []*BatchError
	for id := range t.slots {
		if be, ok := t.slots[id].err.(*BatchError); ok {
			failures = append(failures, be)
		}
	}
	return failures
}

// Close releases every stored column.
func (t *ResultTable) Close() {
	for id := range t.slots {
		s := &t.slots[id]
		if s.err == nil && s.writes.Load() > 0 {
			s.column.Close()
		}
		s.column = gocv.Mat{}
	}
}
