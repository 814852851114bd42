package sampler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrQueueFull        = errors.New("queue full")
	ErrCommandQueueFull = errors.New("command queue full")
	ErrSamplerStopped   = errors.New("sampler stopped")
	ErrUnableToStart    = errors.New("unable to start")
	ErrUnknownCommand   = errors.New("unknown command")
)

const (
	DefaultRateHz           = 20.0
	DefaultCommandQueueSize = 64
	DefaultOutputQueueSize  = 128
	DefaultIdleSleep        = 5 * time.Millisecond
	DefaultPollPeriod       = 50 * time.Millisecond
	DefaultBatchSize        = 10
	DefaultSmoothing        = 0.2

	minRateHz     = 1e-6
	minIdleSleep  = 100 * time.Microsecond
	minPollPeriod = time.Millisecond
)

type config struct {
	label         *string
	logger        *slog.Logger
	meterProvider metric.MeterProvider

	// worker
	rateHz           float64
	commandQueueSize int
	outputQueueSize  int
	idleSleep        time.Duration

	// consumer
	pollPeriod time.Duration
	batchSize  int
	smoothing  float64
}

func newConfig(opts []Option) config {
	c := config{
		rateHz:           DefaultRateHz,
		commandQueueSize: DefaultCommandQueueSize,
		outputQueueSize:  DefaultOutputQueueSize,
		idleSleep:        DefaultIdleSleep,
		pollPeriod:       DefaultPollPeriod,
		batchSize:        DefaultBatchSize,
		smoothing:        DefaultSmoothing,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) newLogger() *slog.Logger {
	logger := slog.Default()
	if c.logger != nil {
		logger = c.logger
	}

	if c.label != nil {
		logger = logger.With("label", *c.label)
	}
	return logger
}

func (c config) metricsLabel() string {
	if c.label != nil {
		return *c.label
	}
	return "default"
}

// period is the sample period derived from the configured rate.
func (c config) period() time.Duration {
	return time.Duration(float64(time.Second) / c.rateHz)
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func WithLabel(label string) Option {
	return func(c *config) {
		c.label = &label
	}
}

// WithMeterProvider enables otel metrics. Without it nothing is recorded.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithRate sets the target sample rate in Hz. Non-positive rates are clamped to a tiny
// positive value rather than rejected.
func WithRate(hz float64) Option {
	return func(c *config) {
		if !(hz >= minRateHz) { // also catches NaN
			hz = minRateHz
		}
		c.rateHz = hz
	}
}

func WithCommandQueueSize(size int) Option {
	return func(c *config) {
		c.commandQueueSize = max(1, size)
	}
}

func WithOutputQueueSize(size int) Option {
	return func(c *config) {
		c.outputQueueSize = max(1, size)
	}
}

// WithIdleSleep bounds how long the worker waits between loop iterations. It is also the
// upper bound on shutdown latency.
func WithIdleSleep(d time.Duration) Option {
	return func(c *config) {
		c.idleSleep = max(minIdleSleep, d)
	}
}

func WithPollPeriod(d time.Duration) Option {
	return func(c *config) {
		c.pollPeriod = max(minPollPeriod, d)
	}
}

// WithBatchSize caps how many messages a single consumer poll drains.
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.batchSize = max(1, n)
	}
}

// WithSmoothing sets the EMA weight of the newest inter-arrival rate, within (0, 1].
func WithSmoothing(alpha float64) Option {
	return func(c *config) {
		if alpha > 0 {
			c.smoothing = lo.Clamp(alpha, 0, 1)
		}
	}
}
