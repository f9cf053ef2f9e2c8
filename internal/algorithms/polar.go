// Cartesian to polar remap of the linear barcode
package algorithms

import (
	"fmt"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// PolarName is the registry name of the polar transform.
const PolarName = "polar"

// PolarRemap turns the linear barcode into a disc. The batch axis becomes
// the angle and the frame rows become the radius. Pixels outside the disc are
// fully transparent.
type PolarRemap struct{}

func NewPolarRemap() *PolarRemap {
	return &PolarRemap{}
}

// Apply rotates img by 90 degrees clockwise and inverse-maps it onto a
// size x size BGRA canvas around polarCenter(size) with radius size/2.
// Sampling is nearest neighbour and the angle axis wraps, so the first and
// last batches meet without a seam.
func (p *PolarRemap) Apply(img gocv.Mat, size int) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), fmt.Errorf("polar transform: input image is empty")
	}
	if size < 2 {
		return gocv.NewMat(), fmt.Errorf("polar transform: size must be at least 2, got %d", size)
	}

	var toBGRA gocv.ColorConversionCode
	convert := true
	switch img.Type() {
	case gocv.MatTypeCV8UC1:
		toBGRA = gocv.ColorGrayToBGRA
	case gocv.MatTypeCV8UC3:
		toBGRA = gocv.ColorBGRToBGRA
	case gocv.MatTypeCV8UC4:
		convert = false
	default:
		return gocv.NewMat(), fmt.Errorf("polar transform: unsupported image type %d", img.Type())
	}

	rotated := gocv.NewMat()
	defer rotated.Close()
	if err := gocv.Rotate(img, &rotated, gocv.Rotate90Clockwise); err != nil {
		return gocv.NewMat(), fmt.Errorf("polar transform: %w", err)
	}

	// one wrapped row above and below the angle axis
	padded := gocv.NewMat()
	defer padded.Close()
	if err := gocv.CopyMakeBorder(rotated, &padded, angleBorder, angleBorder, 0, 0, gocv.BorderWrap, color.RGBA{}); err != nil {
		return gocv.NewMat(), fmt.Errorf("polar transform: %w", err)
	}

	mapX, mapY, err := polarMaps(size, rotated.Cols(), rotated.Rows())
	if err != nil {
		return gocv.NewMat(), err
	}
	defer mapX.Close()
	defer mapY.Close()

	warped := gocv.NewMat()
	defer warped.Close()
	if err := gocv.Remap(padded, &warped, &mapX, &mapY, gocv.InterpolationNearestNeighbor, gocv.BorderConstant, color.RGBA{}); err != nil {
		return gocv.NewMat(), fmt.Errorf("polar transform: %w", err)
	}

	result := gocv.NewMat()
	if convert {
		err = gocv.CvtColor(warped, &result, toBGRA)
	} else {
		err = warped.CopyTo(&result)
	}
	if err != nil {
		result.Close()
		return gocv.NewMat(), fmt.Errorf("polar transform: %w", err)
	}

	if err := maskOutsideCircle(&result, size); err != nil {
		result.Close()
		return gocv.NewMat(), err
	}
	return result, nil
}

// angleBorder is the number of wrapped rows added on each side of the
// angle axis before remapping.
const angleBorder = 1

// polarCenter is the pixel center shared by the warp and the mask. Half
// values round to even.
func polarCenter(size int) int {
	return int(math.RoundToEven(float64(size) / 2))
}

// polarMaps builds the inverse maps for a size x size destination over a
// source padded by angleBorder rows. Source columns span the radius
// [0, size/2] and source rows span the angle [0, 2*pi). Radii past the last
// column clamp to it.
func polarMaps(size, srcCols, srcRows int) (gocv.Mat, gocv.Mat, error) {
	mapX := gocv.NewMatWithSize(size, size, gocv.MatTypeCV32FC1)
	mapY := gocv.NewMatWithSize(size, size, gocv.MatTypeCV32FC1)

	xs, err := mapX.DataPtrFloat32()
	if err != nil {
		mapX.Close()
		mapY.Close()
		return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("polar transform: x map: %w", err)
	}
	ys, err := mapY.DataPtrFloat32()
	if err != nil {
		mapX.Close()
		mapY.Close()
		return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("polar transform: y map: %w", err)
	}

	center := float64(polarCenter(size))
	maxRadius := float64(size / 2)
	kMag := float64(srcCols) / maxRadius
	kAngle := float64(srcRows) / (2 * math.Pi)
	lastCol := float64(srcCols - 1)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			rho, phi := polarSample(float64(x)-center, float64(y)-center, kMag, kAngle)

			i := y*size + x
			xs[i] = float32(math.Min(rho, lastCol))
			ys[i] = float32(phi + angleBorder)
		}
	}

	return mapX, mapY, nil
}

// polarSample returns the unpadded source column and row for the offset
// (dx, dy) from the center.
func polarSample(dx, dy, kMag, kAngle float64) (float64, float64) {
	angle := math.Atan2(dy, dx)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return math.Hypot(dx, dy) * kMag, angle * kAngle
}

// maskOutsideCircle zeroes every BGRA pixel farther than size/2 from
// polarCenter(size).
func maskOutsideCircle(img *gocv.Mat, size int) error {
	if img.Type() != gocv.MatTypeCV8UC4 {
		return fmt.Errorf("polar transform: mask needs a BGRA image, got type %d", img.Type())
	}

	pixels, err := img.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("polar transform: mask: %w", err)
	}

	center := polarCenter(size)
	radius := size / 2
	for y := 0; y < img.Rows(); y++ {
		for x := 0; x < img.Cols(); x++ {
			if !insideCircle(x, y, center, radius) {
				i := (y*img.Cols() + x) * 4
				pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 0, 0, 0, 0
			}
		}
	}
	return nil
}

func insideCircle(x, y, center, radius int) bool {
	dx := x - center
	dy := y - center
	return dx*dx+dy*dy <= radius*radius
}
