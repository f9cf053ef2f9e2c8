// Index-ordered assembly of the barcode image
package core

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Reducer turns a batch of same-shape frames into a single column.
type Reducer interface {
	Reduce(frames []gocv.Mat) (gocv.Mat, error)
}

// Transform is an optional whole-image pass applied after concatenation.
// size is the batch count.
type Transform interface {
	Apply(img gocv.Mat, size int) (gocv.Mat, error)
}

// Assemble concatenates the table's columns in ascending batch id order. Any
// failed slot fails the whole assembly: a barcode with a missing slice is not
// a usable result. The caller owns the returned Mat.
func Assemble(table *ResultTable, transform Transform) (gocv.Mat, error) {
	if table.Len() == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: no batches to assemble", ErrReductionFailure)
	}
	if err := table.Err(); err != nil {
		return gocv.NewMat(), err
	}

	first, _ := table.Column(0)
	height := first.Rows()
	matType := first.Type()

	barcode := gocv.NewMatWithSize(height, table.Len(), matType)
	for id := 0; id < table.Len(); id++ {
		column, _ := table.Column(id)
		if column.Rows() != height || column.Cols() != 1 || column.Type() != matType {
			barcode.Close()
			return gocv.NewMat(), &BatchError{ID: id, Err: fmt.Errorf("%w: column is %s, want %dx%d (type %d)",
				ErrReductionFailure, ShapeOf(column), 1, height, matType)}
		}

		region := barcode.Region(image.Rect(id, 0, id+1, height))
		err := column.CopyTo(&region)
		region.Close()
		if err != nil {
			barcode.Close()
			return gocv.NewMat(), &BatchError{ID: id, Err: fmt.Errorf("%w: copy column: %w", ErrReductionFailure, err)}
		}
	}

	if transform == nil {
		return barcode, nil
	}

	transformed, err := transform.Apply(barcode, table.Len())
	barcode.Close()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("transform barcode: %w", err)
	}
	return transformed, nil
}
