// Error kinds shared by the barcode pipeline
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means the frame source could not be opened or read.
	// It aborts the whole run.
	ErrSourceUnavailable = errors.New("frame source unavailable")

	// ErrDimensionMismatch means frames within one batch disagree in shape.
	ErrDimensionMismatch = errors.New("frame dimension mismatch")

	// ErrReductionFailure covers any other failure inside a batch task.
	ErrReductionFailure = errors.New("batch reduction failed")

	// ErrInvalidPlan is returned when stride and batch count do not fit the source.
	ErrInvalidPlan = errors.New("invalid sampling plan")

	// ErrEndOfStream is returned by FrameSource.Next once no frames remain.
	ErrEndOfStream = errors.New("end of stream")

	// ErrSlotWritten is returned when a result slot is written a second time.
	ErrSlotWritten = errors.New("result slot already written")
)

// BatchError records a failure against a single batch id.
type BatchError struct {
	ID  int
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.ID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
