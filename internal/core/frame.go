// Frame shape checks for decoded video frames
package core

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Shape describes the geometry and pixel layout of a frame.
type Shape struct {
	Rows int
	Cols int
	Type gocv.MatType
}

// ShapeOf returns the shape of mat.
func ShapeOf(mat gocv.Mat) Shape {
	return Shape{Rows: mat.Rows(), Cols: mat.Cols(), Type: mat.Type()}
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d (type %d)", s.Cols, s.Rows, s.Type)
}

// ValidateFrame validates an OpenCV Mat for use as a frame
func ValidateFrame(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("frame is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels < 1 || channels > 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	return nil
}

// releaseFrames closes every frame in frames.
func releaseFrames(frames []gocv.Mat) {
	for i := range frames {
		frames[i].Close()
	}
}
