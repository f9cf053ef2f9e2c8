// Sequential video frame source backed by OpenCV
package io

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"movie-barcode/internal/core"
)

// VideoInfo describes an opened video stream.
type VideoInfo struct {
	Path        string  `json:"path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
}

// VideoSource reads frames from a movie file in order. It is not safe for
// concurrent use.
type VideoSource struct {
	capture *gocv.VideoCapture
	info    VideoInfo
	read    int
	logger  logrus.FieldLogger
}

// OpenVideo opens path for sequential reading.
func OpenVideo(path string, logger logrus.FieldLogger) (*VideoSource, error) {
	logger.WithField("filepath", path).Debug("Opening movie file")

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open the movie file %s: %w", core.ErrSourceUnavailable, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: unable to open the movie file %s", core.ErrSourceUnavailable, path)
	}

	info := VideoInfo{
		Path:        path,
		Width:       int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:      int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:         capture.Get(gocv.VideoCaptureFPS),
		TotalFrames: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	if info.TotalFrames <= 0 {
		capture.Close()
		return nil, fmt.Errorf("%w: movie file %s reports no frames", core.ErrSourceUnavailable, path)
	}

	logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    info.Width,
		"height":   info.Height,
		"fps":      info.FPS,
		"frames":   info.TotalFrames,
	}).Info("Movie file opened")

	return &VideoSource{
		capture: capture,
		info:    info,
		logger:  logger,
	}, nil
}

// Info returns the stream properties read at open time.
func (v *VideoSource) Info() VideoInfo {
	return v.info
}

func (v *VideoSource) TotalFrames() int {
	return v.info.TotalFrames
}

// Next decodes the next frame into a new Mat owned by the caller.
func (v *VideoSource) Next() (gocv.Mat, error) {
	frame := gocv.NewMat()
	if ok := v.capture.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, fmt.Errorf("after %d frames: %w", v.read, core.ErrEndOfStream)
	}
	v.read++
	return frame, nil
}

// Skip grabs the next frame without decoding it.
func (v *VideoSource) Skip() error {
	if err := v.capture.Grab(1); err != nil {
		return fmt.Errorf("%w: skip frame %d: %w", core.ErrSourceUnavailable, v.read, err)
	}
	v.read++
	return nil
}

func (v *VideoSource) Close() error {
	v.logger.WithField("frames_read", v.read).Debug("Closing movie file")
	return v.capture.Close()
}
