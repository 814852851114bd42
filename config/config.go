// Package config loads sampler settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	sampler "github.com/l0rem1psum/sampler"
	"gopkg.in/yaml.v3"
)

// Config holds every construction-time parameter of a sampler core.
type Config struct {
	Label            string  `yaml:"label"`
	RateHz           float64 `yaml:"rate_hz"`
	CommandQueueSize int     `yaml:"command_queue_size"`
	OutputQueueSize  int     `yaml:"output_queue_size"`
	IdleSleepMS      float64 `yaml:"idle_sleep_ms"`
	PollPeriodMS     float64 `yaml:"poll_period_ms"`
	BatchSize        int     `yaml:"batch_size"`
	Smoothing        float64 `yaml:"smoothing"`
	Seed             uint64  `yaml:"seed"`       // 0 = time based
	RecordPath       string  `yaml:"record_path"` // empty = no recording
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Label:            "sampler",
		RateHz:           sampler.DefaultRateHz,
		CommandQueueSize: sampler.DefaultCommandQueueSize,
		OutputQueueSize:  sampler.DefaultOutputQueueSize,
		IdleSleepMS:      durationMS(sampler.DefaultIdleSleep),
		PollPeriodMS:     durationMS(sampler.DefaultPollPeriod),
		BatchSize:        sampler.DefaultBatchSize,
		Smoothing:        sampler.DefaultSmoothing,
	}
}

// Load reads and parses a YAML configuration file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate reports every invalid field at once.
func Validate(cfg *Config) error {
	var errs error

	if !(cfg.RateHz > 0) || math.IsInf(cfg.RateHz, 0) {
		errs = multierror.Append(errs, fmt.Errorf("rate_hz must be a positive finite number, got %v", cfg.RateHz))
	}
	if cfg.CommandQueueSize < 1 {
		errs = multierror.Append(errs, fmt.Errorf("command_queue_size must be >= 1, got %d", cfg.CommandQueueSize))
	}
	if cfg.OutputQueueSize < 1 {
		errs = multierror.Append(errs, fmt.Errorf("output_queue_size must be >= 1, got %d", cfg.OutputQueueSize))
	}
	if !(cfg.IdleSleepMS > 0) {
		errs = multierror.Append(errs, fmt.Errorf("idle_sleep_ms must be > 0, got %v", cfg.IdleSleepMS))
	}
	if !(cfg.PollPeriodMS > 0) {
		errs = multierror.Append(errs, fmt.Errorf("poll_period_ms must be > 0, got %v", cfg.PollPeriodMS))
	}
	if cfg.BatchSize < 1 {
		errs = multierror.Append(errs, fmt.Errorf("batch_size must be >= 1, got %d", cfg.BatchSize))
	}
	if !(cfg.Smoothing > 0 && cfg.Smoothing <= 1) {
		errs = multierror.Append(errs, errors.New("smoothing must be within (0, 1]"))
	}

	return errs
}

// Options converts the configuration into sampler options. Callers append their own
// logger and meter provider.
func (c Config) Options() []sampler.Option {
	opts := []sampler.Option{
		sampler.WithRate(c.RateHz),
		sampler.WithCommandQueueSize(c.CommandQueueSize),
		sampler.WithOutputQueueSize(c.OutputQueueSize),
		sampler.WithIdleSleep(msDuration(c.IdleSleepMS)),
		sampler.WithPollPeriod(msDuration(c.PollPeriodMS)),
		sampler.WithBatchSize(c.BatchSize),
		sampler.WithSmoothing(c.Smoothing),
	}
	if c.Label != "" {
		opts = append(opts, sampler.WithLabel(c.Label))
	}
	return opts
}

// PollPeriod is the consumer poll period as a duration.
func (c Config) PollPeriod() time.Duration {
	return msDuration(c.PollPeriodMS)
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
