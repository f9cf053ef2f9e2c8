package io

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"movie-barcode/internal/core"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestValidateTarget(t *testing.T) {
	dir := t.TempDir()
	writer := NewImageWriter(quietLogger())

	tests := []struct {
		name       string
		path       string
		needsAlpha bool
		wantErr    bool
	}{
		{name: "png", path: filepath.Join(dir, "barcode.png")},
		{name: "upper case jpeg", path: filepath.Join(dir, "barcode.JPEG")},
		{name: "png with alpha", path: filepath.Join(dir, "barcode.png"), needsAlpha: true},
		{name: "tiff with alpha", path: filepath.Join(dir, "barcode.tif"), needsAlpha: true},
		{name: "jpeg with alpha", path: filepath.Join(dir, "barcode.jpg"), needsAlpha: true, wantErr: true},
		{name: "bmp with alpha", path: filepath.Join(dir, "barcode.bmp"), needsAlpha: true, wantErr: true},
		{name: "unknown format", path: filepath.Join(dir, "barcode.gif"), wantErr: true},
		{name: "no extension", path: filepath.Join(dir, "barcode"), wantErr: true},
		{name: "missing directory", path: filepath.Join(dir, "missing", "barcode.png"), wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writer.ValidateTarget(tt.path, tt.needsAlpha)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTargetParentIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := NewImageWriter(quietLogger()).ValidateTarget(filepath.Join(file, "barcode.png"), false)
	assert.Error(t, err)
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "barcode.png")

	img := gocv.NewMatWithSize(4, 10, gocv.MatTypeCV8UC4)
	defer img.Close()

	require.NoError(t, NewImageWriter(quietLogger()).SaveImage(img, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file must be renamed away")
	assert.Equal(t, "barcode.png", entries[0].Name())

	loaded := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer loaded.Close()
	assert.Equal(t, 10, loaded.Cols())
	assert.Equal(t, 4, loaded.Rows())
	assert.Equal(t, 4, loaded.Channels())
}

func TestSaveImageRejectsEmptyImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "barcode.png")

	empty := gocv.NewMat()
	defer empty.Close()

	assert.Error(t, NewImageWriter(quietLogger()).SaveImage(empty, path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no output file on failure")
}

func TestOpenVideoMissingFile(t *testing.T) {
	_, err := OpenVideo(filepath.Join(t.TempDir(), "missing.mp4"), quietLogger())
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}
