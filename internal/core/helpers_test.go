package core

import (
	"image"

	"gocv.io/x/gocv"
)

// SyntheticSource serves generated frames. Build returns frame index i; the
// source hands out ownership of every frame it builds.
type SyntheticSource struct {
	Total    int
	Reported int // overrides TotalFrames when > 0
	Build    func(i int) gocv.Mat

	next  int
	Reads int
	Skips int
}

func (s *SyntheticSource) TotalFrames() int {
	if s.Reported > 0 {
		return s.Reported
	}
	return s.Total
}

func (s *SyntheticSource) Next() (gocv.Mat, error) {
	if s.next >= s.Total {
		return gocv.Mat{}, ErrEndOfStream
	}
	frame := s.Build(s.next)
	s.next++
	s.Reads++
	return frame, nil
}

func (s *SyntheticSource) Skip() error {
	if s.next >= s.Total {
		return ErrEndOfStream
	}
	s.next++
	s.Skips++
	return nil
}

func (s *SyntheticSource) Close() error { return nil }

// GrayFrame builds a rows x cols single-channel frame where every pixel of
// row y has value(y).
func GrayFrame(rows, cols int, value func(y int) uint8) gocv.Mat {
	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			data[y*cols+x] = value(y)
		}
	}
	frame, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data)
	if err != nil {
		panic(err)
	}
	return frame
}

// firstFrameReducer returns a copy of the first frame's first column.
type firstFrameReducer struct{}

func (firstFrameReducer) Reduce(frames []gocv.Mat) (gocv.Mat, error) {
	region := frames[0].Region(image.Rect(0, 0, 1, frames[0].Rows()))
	defer region.Close()

	column := gocv.NewMat()
	region.CopyTo(&column)
	return column, nil
}
