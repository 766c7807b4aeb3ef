package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/pkg/blelog"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

var (
	formats    = []string{"text", "json"}
	colorModes = []string{"auto", "always", "never"}
	traceModes = []string{"off", "log", "stderr"}
)

// Config holds application configuration
type Config struct {
	LogLevel       string        `yaml:"log_level" default:"info"`
	Flags          string        `yaml:"flags" default:"default"`
	Format         string        `yaml:"format" default:"text"`
	Color          string        `yaml:"color" default:"auto"`
	ScanTimeout    time.Duration `yaml:"scan_timeout" default:"10s"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"30s"`
	BufferSize     int           `yaml:"buffer_size" default:"256"`
	Trace          string        `yaml:"trace" default:"off"`
	TraceBuffer    int           `yaml:"trace_buffer" default:"16384"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path yields the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := blelog.ParseFlags(c.Flags); err != nil {
		errs = append(errs, fmt.Errorf("flags: %w", err))
	}
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("format: %q is not one of %v", c.Format, formats))
	}
	if !slices.Contains(colorModes, c.Color) {
		errs = append(errs, fmt.Errorf("color: %q is not one of %v", c.Color, colorModes))
	}
	if !slices.Contains(traceModes, c.Trace) {
		errs = append(errs, fmt.Errorf("trace: %q is not one of %v", c.Trace, traceModes))
	}
	if c.ScanTimeout < 0 {
		errs = append(errs, fmt.Errorf("scan_timeout: must not be negative"))
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect_timeout: must not be negative"))
	}
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer_size: must be positive"))
	}
	if c.TraceBuffer <= 0 {
		errs = append(errs, fmt.Errorf("trace_buffer: must be positive"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Level returns the parsed log level, falling back to info
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// LogFlags returns the categories selected by Flags
func (c *Config) LogFlags() (blelog.Flags, error) {
	return blelog.ParseFlags(c.Flags)
}

// NewLogger creates a configured logger instance writing to stderr
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
