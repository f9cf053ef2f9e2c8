package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	barcodeio "movie-barcode/internal/io"
)

// Report is the JSON record of one barcode run.
type Report struct {
	RunID          string               `json:"run_id"`
	StartedAt      time.Time            `json:"started_at"`
	FinishedAt     time.Time            `json:"finished_at"`
	Input          string               `json:"input"`
	Output         string               `json:"output"`
	Video          *barcodeio.VideoInfo `json:"video,omitempty"`
	TotalFrames    int                  `json:"total_frames"`
	Stride         int                  `json:"stride"`
	Batches        int                  `json:"batches"`
	FramesPerBatch int                  `json:"frames_per_batch"`
	Workers        int                  `json:"workers"`
	Transform      bool                 `json:"transform"`
	Width          int                  `json:"width,omitempty"`
	Height         int                  `json:"height,omitempty"`
	Timing         Summary              `json:"timing"`
	Error          string               `json:"error,omitempty"`
}

// NewReport starts a report with a fresh run id.
func NewReport(input, output string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Input:     input,
		Output:    output,
	}
}

// Finish stamps the end time, the timing summary and the run error if any.
func (r *Report) Finish(summary Summary, err error) {
	r.FinishedAt = time.Now()
	r.Timing = summary
	if err != nil {
		r.Error = err.Error()
	}
}

// WriteFile encodes the report as JSON into path.
func (r *Report) WriteFile(path string) error {
	data, err := sonic.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
