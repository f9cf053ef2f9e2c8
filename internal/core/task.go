package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// BatchObserver is told about every finished batch, from worker goroutines.
type BatchObserver interface {
	ObserveBatch(id int, elapsed time.Duration, err error)
}

// batchTask owns one batch until its frames are reduced and released.
type batchTask struct {
	batch    Batch
	reducer  Reducer
	table    *ResultTable
	observer BatchObserver
	logger   logrus.FieldLogger
}

func (t *batchTask) Run() {
	start := time.Now()
	id := t.batch.ID

	err := t.reduce()
	if err != nil {
		if failErr := t.table.Fail(id, err); failErr != nil {
			t.logger.WithError(failErr).WithField("batch", id).Error("Could not record batch failure")
		}
		t.logger.WithError(err).WithField("batch", id).Warn("Batch failed")
	} else {
		t.logger.WithField("batch", id).Info("Processed batch")
	}

	if t.observer != nil {
		t.observer.ObserveBatch(id, time.Since(start), err)
	}
}

func (t *batchTask) reduce() (err error) {
	defer t.batch.Release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrReductionFailure, r)
		}
	}()

	column, err := t.reducer.Reduce(t.batch.Frames)
	if err != nil {
		if errors.Is(err, ErrDimensionMismatch) || errors.Is(err, ErrReductionFailure) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrReductionFailure, err)
	}
	if storeErr := t.table.Store(t.batch.ID, column); storeErr != nil {
		column.Close()
		return storeErr
	}
	return nil
}
