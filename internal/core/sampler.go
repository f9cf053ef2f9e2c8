// Sequential frame sampling and batching
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FrameSource is a sequential, single-reader iterator over decoded frames.
type FrameSource interface {
	// TotalFrames is the frame count known before reading starts.
	TotalFrames() int
	// Next decodes the next frame. It returns ErrEndOfStream when none remain.
	// The caller owns the returned Mat.
	Next() (gocv.Mat, error)
	// Skip advances past the next frame without decoding it.
	Skip() error
	Close() error
}

// Batch is a group of retained frames reduced as one unit. The frames belong
// to whoever holds the batch.
type Batch struct {
	ID     int
	Frames []gocv.Mat
}

// Release closes all frames of the batch.
func (b *Batch) Release() {
	releaseFrames(b.Frames)
	b.Frames = nil
}

// Sampler reads a FrameSource at a fixed stride and cuts the retained frames
// into full batches.
type Sampler struct {
	source FrameSource
	plan   Plan
	logger logrus.FieldLogger
}

func NewSampler(source FrameSource, plan Plan, logger logrus.FieldLogger) *Sampler {
	return &Sampler{
		source: source,
		plan:   plan,
		logger: logger,
	}
}

// Run hands every full batch to submit, in id order, and stops once
// plan.Batches batches were submitted. Retained frames past the last full
// batch are never read. Ownership of a batch passes to submit even when it
// returns an error.
func (s *Sampler) Run(ctx context.Context, submit func(Batch) error) (int, error) {
	submitted := 0
	current := Batch{ID: submitted, Frames: make([]gocv.Mat, 0, s.plan.FramesPerBatch)}

	for index := 0; submitted < s.plan.Batches; index++ {
		if err := ctx.Err(); err != nil {
			current.Release()
			return submitted, err
		}

		if index%s.plan.Stride != 0 {
			if err := s.source.Skip(); err != nil {
				current.Release()
				return submitted, s.sourceError(index, submitted, err)
			}
			continue
		}

		frame, err := s.source.Next()
		if err != nil {
			current.Release()
			return submitted, s.sourceError(index, submitted, err)
		}
		current.Frames = append(current.Frames, frame)

		if len(current.Frames) < s.plan.FramesPerBatch {
			continue
		}

		id := current.ID
		if err := submit(current); err != nil {
			return submitted, fmt.Errorf("submit batch %d: %w", id, err)
		}
		s.logger.WithField("batch", id).Info("Allocated batch")

		submitted++
		current = Batch{ID: submitted, Frames: make([]gocv.Mat, 0, s.plan.FramesPerBatch)}
	}

	s.logger.WithFields(logrus.Fields{
		"batches": submitted,
		"dropped": s.plan.DroppedFrames(),
	}).Info("Finished reading frames")
	return submitted, nil
}

func (s *Sampler) sourceError(index, submitted int, err error) error {
	if errors.Is(err, ErrEndOfStream) {
		return fmt.Errorf("%w: stream ended at frame %d after %d of %d batches",
			ErrSourceUnavailable, index, submitted, s.plan.Batches)
	}
	return fmt.Errorf("%w: frame %d: %w", ErrSourceUnavailable, index, err)
}
