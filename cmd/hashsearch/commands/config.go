package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mgaillard/hashsearch"
	"github.com/mgaillard/hashsearch/blobstore/minio"
	"github.com/mgaillard/hashsearch/index/gpu"
	"github.com/mgaillard/hashsearch/resource"
	"github.com/mgaillard/hashsearch/source"
)

// Config is the YAML configuration of the hashsearch tool.
type Config struct {
	Backend        string `yaml:"backend"`
	Threshold      int    `yaml:"threshold"`
	Chunks         int    `yaml:"chunks"`
	K              int    `yaml:"k"`
	ResultCapacity int    `yaml:"result_capacity"`
	Overflow       string `yaml:"overflow"`
	Workers        int    `yaml:"workers"`
	Compression    string `yaml:"compression"`

	Limits LimitsConfig `yaml:"limits"`
	Log    LogConfig    `yaml:"log"`
	S3     S3Config     `yaml:"s3"`
	MinIO  minio.Config `yaml:"minio"`
	Serve  ServeConfig  `yaml:"serve"`
}

// LimitsConfig maps to resource.Config.
type LimitsConfig struct {
	MemoryBytes      int64 `yaml:"memory_bytes"`
	MaxQueries       int64 `yaml:"max_queries"`
	IOBytesPerSecond int64 `yaml:"io_bytes_per_second"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// S3Config configures s3:// inputs.
type S3Config struct {
	Region              string `yaml:"region"`
	Endpoint            string `yaml:"endpoint"`
	DownloadConcurrency int    `yaml:"download_concurrency"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Listen string `yaml:"listen"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Backend:     "bruteforce",
		Overflow:    "grow",
		Compression: "auto",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Listen: ":8080",
		},
	}
}

// LoadConfig reads a YAML configuration on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := hashsearch.ParseBackend(c.Backend); err != nil {
		return err
	}
	if _, err := gpu.ParseOverflowPolicy(c.Overflow); err != nil {
		return err
	}
	if _, err := source.ParseCompression(c.Compression); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Logger builds the logger described by c.Log, writing to w.
func (c Config) Logger(w io.Writer) *hashsearch.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return hashsearch.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return hashsearch.NewLogger(slog.NewTextHandler(w, opts))
}

// Controller returns the resource controller for c.Limits, or nil when no
// limit is set.
func (c Config) Controller() *resource.Controller {
	l := c.Limits
	if l.MemoryBytes == 0 && l.MaxQueries == 0 && l.IOBytesPerSecond == 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   l.MemoryBytes,
		MaxWorkers:         l.MaxQueries,
		IOLimitBytesPerSec: l.IOBytesPerSecond,
	})
}

// SearcherOptions translates c into hashsearch options.
func (c Config) SearcherOptions(logger *hashsearch.Logger, rc *resource.Controller, extra ...hashsearch.Option) ([]hashsearch.Option, error) {
	overflow, err := gpu.ParseOverflowPolicy(c.Overflow)
	if err != nil {
		return nil, err
	}
	opts := []hashsearch.Option{
		hashsearch.WithLogger(logger),
		hashsearch.WithResourceController(rc),
		hashsearch.WithWorkers(c.Workers),
		hashsearch.WithChunks(c.Chunks),
		hashsearch.WithK(c.K),
		hashsearch.WithResultCapacity(c.ResultCapacity),
		hashsearch.WithOverflowPolicy(overflow),
	}
	return append(opts, extra...), nil
}
