package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"movie-barcode/internal/config"
)

// errUsage means usage was printed and the program should stop.
var errUsage = errors.New("usage requested")

func printUsage(w io.Writer, programName string) {
	fmt.Fprintf(w, "Usage: %s [options]\n"+
		"Options:\n"+
		"  -f, --file <file>          Movie file (required)\n"+
		"  -r, --rate <rate>          Sampling rate (default: %d)\n"+
		"  -b, --batches <batches>    Number of batches (default: %d)\n"+
		"  -w, --workers <workers>    Number of workers (default: %d)\n"+
		"  -o, --output <file>        Output image (default: %s)\n"+
		"  -v, --verbose              Verbose output (default: false)\n"+
		"  -t, --transform            Transform output (default: false)\n"+
		"      --config <file>        TOML or YAML file with default options\n"+
		"      --report <file>        Write a JSON run report\n"+
		"      --progress             Show a progress bar\n"+
		"      --log-format <format>  Log format, text or json (default: %s)\n"+
		"  -h, --help                 Display this help message\n",
		programName, config.DefaultRate, config.DefaultBatches, config.DefaultWorkers,
		config.DefaultOutput, config.DefaultLogFormat)
}

func newFlagSet(cfg *config.Config, configPath *string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("barcode", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { printUsage(out, fs.Name()) }

	fs.StringVar(&cfg.File, "f", cfg.File, "movie file")
	fs.StringVar(&cfg.File, "file", cfg.File, "movie file")
	fs.IntVar(&cfg.Rate, "r", cfg.Rate, "sampling rate")
	fs.IntVar(&cfg.Rate, "rate", cfg.Rate, "sampling rate")
	fs.IntVar(&cfg.Batches, "b", cfg.Batches, "number of batches")
	fs.IntVar(&cfg.Batches, "batches", cfg.Batches, "number of batches")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "number of workers")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of workers")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "output image")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "output image")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "verbose output")
	fs.BoolVar(&cfg.Transform, "t", cfg.Transform, "polar transform")
	fs.BoolVar(&cfg.Transform, "transform", cfg.Transform, "polar transform")

	fs.StringVar(configPath, "config", "", "config file")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "run report file")
	fs.BoolVar(&cfg.Progress, "progress", cfg.Progress, "progress bar")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	return fs
}

// parseArguments builds the run configuration. Options from --config are
// applied first and command line flags override them.
func parseArguments(args []string, out io.Writer) (config.Config, error) {
	cfg := config.Default()
	var configPath string

	fs := newFlagSet(&cfg, &configPath, out)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, errUsage
		}
		return cfg, err
	}

	if configPath != "" {
		if err := config.LoadFile(configPath, &cfg); err != nil {
			return cfg, err
		}
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}

	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := cfg.Validate(); err != nil {
		if cfg.File == "" {
			printUsage(out, fs.Name())
		}
		return cfg, err
	}

	return cfg, nil
}
