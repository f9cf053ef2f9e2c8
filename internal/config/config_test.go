package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Rate)
	assert.Equal(t, 100, cfg.Batches)
	assert.Equal(t, 5, cfg.Workers)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Transform)
	assert.Equal(t, "barcode.png", cfg.Output)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.File)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.File = "movie.mp4"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults with file", mutate: func(*Config) {}},
		{name: "json logs", mutate: func(c *Config) { c.LogFormat = "json" }},
		{name: "missing file", mutate: func(c *Config) { c.File = "" }, wantErr: true},
		{name: "zero rate", mutate: func(c *Config) { c.Rate = 0 }, wantErr: true},
		{name: "negative batches", mutate: func(c *Config) { c.Batches = -1 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "empty output", mutate: func(c *Config) { c.Output = "" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "barcode.toml", `
file = "movie.mkv"
rate = 4
workers = 8
transform = true
log_format = "json"
`)

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, "movie.mkv", cfg.File)
	assert.Equal(t, 4, cfg.Rate)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Transform)
	assert.Equal(t, "json", cfg.LogFormat)
	// absent keys keep their defaults
	assert.Equal(t, DefaultBatches, cfg.Batches)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "barcode.yml", `
file: movie.mp4
batches: 250
output: out/strip.tiff
report: run.json
progress: true
`)

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, "movie.mp4", cfg.File)
	assert.Equal(t, 250, cfg.Batches)
	assert.Equal(t, "out/strip.tiff", cfg.Output)
	assert.Equal(t, "run.json", cfg.Report)
	assert.True(t, cfg.Progress)
	assert.Equal(t, DefaultRate, cfg.Rate)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()

	assert.Error(t, LoadFile(writeFile(t, "barcode.ini", "rate=2"), &cfg))
	assert.Error(t, LoadFile(writeFile(t, "barcode.toml", "rate = ["), &cfg))
	assert.Error(t, LoadFile(writeFile(t, "barcode.yaml", "rate: [1"), &cfg))
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))
}
