// Movie barcode generator
// Samples the frames of a movie, averages them in batches and writes the
// batch columns side by side as a single image.

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"movie-barcode/internal/algorithms"
	"movie-barcode/internal/config"
	"movie-barcode/internal/core"
	barcodeio "movie-barcode/internal/io"
	"movie-barcode/internal/metrics"
)

const (
	AppName    = "Movie Barcode"
	AppVersion = "1.0.0"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseArguments(args, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			initLogger(false, config.DefaultLogFormat, stderr).WithError(err).Error("Invalid arguments")
		}
		return exitFailure
	}

	logger := initLogger(cfg.Verbose, cfg.LogFormat, stderr)
	logger.WithFields(logrus.Fields{
		"version": AppVersion,
		"file":    cfg.File,
		"rate":    cfg.Rate,
		"batches": cfg.Batches,
		"workers": cfg.Workers,
	}).Info("Starting " + AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generate(ctx, cfg, logger, stderr); err != nil {
		fields := logrus.Fields{}
		var batchErr *core.BatchError
		if errors.As(err, &batchErr) {
			fields["batch"] = batchErr.ID
		}
		logger.WithFields(fields).WithError(err).Error("Barcode generation failed")
		return exitFailure
	}
	return exitSuccess
}

// generate runs one barcode job end to end. The output file is only written
// when every batch was reduced.
func generate(ctx context.Context, cfg config.Config, logger *logrus.Logger, stderr io.Writer) (err error) {
	report := metrics.NewReport(cfg.File, cfg.Output)
	report.Stride = cfg.Rate
	report.Batches = cfg.Batches
	report.Workers = cfg.Workers
	report.Transform = cfg.Transform

	var bar *progressbar.ProgressBar
	if cfg.Progress && !cfg.Verbose {
		bar = progressbar.NewOptions(cfg.Batches,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("Reducing batches"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
		)
	}
	collector := metrics.NewCollector(func(int, error) {
		if bar != nil {
			bar.Add(1)
		}
	})

	if cfg.Report != "" {
		defer func() {
			report.Finish(collector.Summary(), err)
			if writeErr := report.WriteFile(cfg.Report); writeErr != nil {
				logger.WithError(writeErr).Warn("Could not write run report")
			}
		}()
	}

	writer := barcodeio.NewImageWriter(logger)
	if err := writer.ValidateTarget(cfg.Output, cfg.Transform); err != nil {
		return err
	}

	source, err := barcodeio.OpenVideo(cfg.File, logger)
	if err != nil {
		return err
	}
	defer source.Close()
	info := source.Info()
	report.Video = &info

	var transform core.Transform
	if cfg.Transform {
		if transform, err = algorithms.GetTransform(algorithms.PolarName); err != nil {
			return err
		}
	}

	pipeline, err := core.NewPipeline(core.Options{
		Stride:    cfg.Rate,
		Batches:   cfg.Batches,
		Workers:   cfg.Workers,
		Reducer:   algorithms.NewRowAverage(),
		Transform: transform,
		Observer:  collector,
	}, logger)
	if err != nil {
		return err
	}

	plan, err := pipeline.Plan(source.TotalFrames())
	if err != nil {
		return err
	}
	report.TotalFrames = plan.TotalFrames
	report.FramesPerBatch = plan.FramesPerBatch

	barcode, err := pipeline.Run(ctx, source)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	defer barcode.Close()

	report.Width = barcode.Cols()
	report.Height = barcode.Rows()

	return writer.SaveImage(barcode, cfg.Output)
}

// initLogger initializes the logger with appropriate level
func initLogger(verbose bool, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   verbose,
		})
	}

	return logger
}
