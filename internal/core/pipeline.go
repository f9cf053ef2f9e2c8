// Barcode pipeline: sampler, worker pool, result table and assembler wired together
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"movie-barcode/internal/workers"
)

// Options configures one pipeline run. Stride, Batches and Workers are fixed
// for the lifetime of the run.
type Options struct {
	Stride  int
	Batches int
	Workers int

	Reducer   Reducer
	Transform Transform // nil keeps the linear barcode

	// Observer, if set, is called from worker goroutines after each batch.
	Observer BatchObserver
}

// Pipeline converts a frame source into a barcode image.
type Pipeline struct {
	opts   Options
	logger logrus.FieldLogger
}

func NewPipeline(opts Options, logger logrus.FieldLogger) (*Pipeline, error) {
	if opts.Reducer == nil {
		return nil, fmt.Errorf("pipeline needs a reducer")
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("number of workers must be greater than 0, got %d", opts.Workers)
	}

	return &Pipeline{
		opts:   opts,
		logger: logger,
	}, nil
}

// Plan validates the options against a source of totalFrames frames.
func (p *Pipeline) Plan(totalFrames int) (Plan, error) {
	return NewPlan(totalFrames, p.opts.Stride, p.opts.Batches)
}

// Run reads source to the end of the last batch, reduces every batch on the
// worker pool and assembles the result. It blocks until all submitted work
// has finished, even when reading fails. The caller owns the returned Mat.
func (p *Pipeline) Run(ctx context.Context, source FrameSource) (gocv.Mat, error) {
	start := time.Now()

	plan, err := p.Plan(source.TotalFrames())
	if err != nil {
		return gocv.NewMat(), err
	}
	p.logger.WithFields(logrus.Fields{
		"total_frames":     plan.TotalFrames,
		"stride":           plan.Stride,
		"batches":          plan.Batches,
		"frames_per_batch": plan.FramesPerBatch,
		"workers":          p.opts.Workers,
	}).Info("Starting barcode pipeline")

	table := NewResultTable(plan.Batches)
	defer table.Close()

	pool, err := workers.New(p.opts.Workers, p.logger)
	if err != nil {
		return gocv.NewMat(), err
	}

	sampler := NewSampler(source, plan, p.logger)
	_, readErr := sampler.Run(ctx, func(batch Batch) error {
		task := &batchTask{
			batch:    batch,
			reducer:  p.opts.Reducer,
			table:    table,
			observer: p.opts.Observer,
			logger:   p.logger,
		}
		if err := pool.Submit(task); err != nil {
			batch.Release()
			return err
		}
		return nil
	})

	pool.Drain()

	if readErr != nil {
		return gocv.NewMat(), readErr
	}
	if done := table.Completed(); done != plan.Batches {
		return gocv.NewMat(), fmt.Errorf("%w: %d of %d batches completed", ErrReductionFailure, done, plan.Batches)
	}

	for _, failure := range table.Failures() {
		p.logger.WithError(failure.Err).WithField("batch", failure.ID).Error("Batch failed")
	}

	barcode, err := Assemble(table, p.opts.Transform)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("assemble barcode: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"width":    barcode.Cols(),
		"height":   barcode.Rows(),
		"duration": time.Since(start),
	}).Info("Barcode assembled")
	return barcode, nil
}
