// Output image validation and saving
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}
	alphaFormats     = []string{".png", ".tiff", ".tif"}
)

// ImageWriter validates output paths and writes barcode images.
type ImageWriter struct {
	logger logrus.FieldLogger
}

func NewImageWriter(logger logrus.FieldLogger) *ImageWriter {
	return &ImageWriter{
		logger: logger,
	}
}

// ValidateTarget checks that path can receive an image before any work
// starts. needsAlpha requires a format that keeps transparency.
func (iw *ImageWriter) ValidateTarget(path string, needsAlpha bool) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}

	if !isSupportedImageFormat(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	if needsAlpha && !supportsAlpha(path) {
		return fmt.Errorf("output %s cannot store transparency, use one of %s", path, strings.Join(alphaFormats, ", "))
	}

	dir := filepath.Dir(path)
	stat, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("invalid output path: %s: %w", path, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("invalid output path: %s is not a directory", dir)
	}

	return nil
}

// SaveImage writes mat to path. The image is encoded next to path first and
// renamed into place, so path never holds a partial file.
func (iw *ImageWriter) SaveImage(mat gocv.Mat, path string) error {
	iw.logger.WithField("filepath", path).Debug("Saving image")

	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}

	if !isSupportedImageFormat(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	tmp := filepath.Join(filepath.Dir(path), ".barcode-"+uuid.NewString()+getFileExtension(path))
	if ok := gocv.IMWrite(tmp, mat); !ok {
		os.Remove(tmp)
		return fmt.Errorf("failed to save image: %s", path)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save image: %s: %w", path, err)
	}

	iw.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Barcode saved")

	return nil
}

func isSupportedImageFormat(path string) bool {
	return hasExtension(path, supportedFormats)
}

func supportsAlpha(path string) bool {
	return hasExtension(path, alphaFormats)
}

func hasExtension(path string, formats []string) bool {
	ext := strings.ToLower(getFileExtension(path))
	for _, format := range formats {
		if ext == format {
			return true
		}
	}
	return false
}

func getFileExtension(path string) string {
	return filepath.Ext(path)
}
