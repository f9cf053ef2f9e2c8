// Row-wise averaging of a batch of frames
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"movie-barcode/internal/core"
)

// RowAverage reduces a batch to one column whose row y is the per-channel
// mean of row y over every pixel of every frame in the batch.
type RowAverage struct{}

func NewRowAverage() *RowAverage {
	return &RowAverage{}
}

// Reduce averages each frame across its columns in floating point, sums the
// per-frame columns and scales by the frame count. All frames share a width,
// so this equals the mean over the horizontally concatenated batch.
func (r *RowAverage) Reduce(frames []gocv.Mat) (gocv.Mat, error) {
	if len(frames) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty batch", core.ErrReductionFailure)
	}

	for i, frame := range frames {
		if err := core.ValidateFrame(frame); err != nil {
			return gocv.NewMat(), fmt.Errorf("%w: frame %d: %w", core.ErrReductionFailure, i, err)
		}
	}

	shape := core.ShapeOf(frames[0])
	for i, frame := range frames[1:] {
		if got := core.ShapeOf(frame); got != shape {
			return gocv.NewMat(), fmt.Errorf("%w: frame %d is %s, want %s",
				core.ErrDimensionMismatch, i+1, got, shape)
		}
	}

	sum := gocv.NewMat()
	defer sum.Close()
	column := gocv.NewMat()
	defer column.Close()

	for i, frame := range frames {
		if i == 0 {
			if err := gocv.Reduce(frame, &sum, 1, gocv.ReduceAvg, gocv.MatTypeCV32F); err != nil {
				return gocv.NewMat(), fmt.Errorf("%w: reduce frame %d: %w", core.ErrReductionFailure, i, err)
			}
			continue
		}
		if err := gocv.Reduce(frame, &column, 1, gocv.ReduceAvg, gocv.MatTypeCV32F); err != nil {
			return gocv.NewMat(), fmt.Errorf("%w: reduce frame %d: %w", core.ErrReductionFailure, i, err)
		}
		if err := gocv.Add(sum, column, &sum); err != nil {
			return gocv.NewMat(), fmt.Errorf("%w: accumulate frame %d: %w", core.ErrReductionFailure, i, err)
		}
	}
	sum.DivideFloat(float32(len(frames)))

	result := gocv.NewMat()
	if err := sum.ConvertTo(&result, shape.Type); err != nil {
		result.Close()
		return gocv.NewMat(), fmt.Errorf("%w: convert column: %w", core.ErrReductionFailure, err)
	}
	if result.Empty() || result.Rows() != shape.Rows || result.Cols() != 1 {
		result.Close()
		return gocv.NewMat(), fmt.Errorf("%w: reduced column is empty", core.ErrReductionFailure)
	}

	return result, nil
}
