package core

import "fmt"

// Plan is the sampling arithmetic for one run.
type Plan struct {
	TotalFrames    int
	Stride         int
	Batches        int
	UsedFrames     int
	FramesPerBatch int
}

// NewPlan computes how many retained frames go into each batch. It rejects
// configurations where batches could never fill.
func NewPlan(totalFrames, stride, batches int) (Plan, error) {
	if stride <= 0 {
		return Plan{}, fmt.Errorf("%w: sampling rate must be greater than 0, got %d", ErrInvalidPlan, stride)
	}
	if batches <= 0 {
		return Plan{}, fmt.Errorf("%w: number of batches must be greater than 0, got %d", ErrInvalidPlan, batches)
	}
	if stride >= totalFrames {
		return Plan{}, fmt.Errorf("%w: sampling rate %d must be less than the total number of frames %d",
			ErrInvalidPlan, stride, totalFrames)
	}

	used := totalFrames / stride
	if batches >= used {
		return Plan{}, fmt.Errorf("%w: number of batches %d must be less than the number of used frames %d",
			ErrInvalidPlan, batches, used)
	}

	return Plan{
		TotalFrames:    totalFrames,
		Stride:         stride,
		Batches:        batches,
		UsedFrames:     used,
		FramesPerBatch: used / batches,
	}, nil
}

// DroppedFrames is the number of retained frames past the last full batch.
func (p Plan) DroppedFrames() int {
	return p.UsedFrames - p.Batches*p.FramesPerBatch
}
