package sampler

import (
	"context"
	"log/slog"
	"time"
)

// Renderer is the display side of a Consumer. Both methods are called on the
// consumer's schedule, never concurrently.
type Renderer interface {
	RenderState(State, Controls)
	RenderSample(sample Sample, rateHz float64)
}

// Flusher is implemented by renderers that buffer. Flush is called after every poll that
// drained at least one message.
type Flusher interface {
	Flush() error
}

// Controls tells a UI which commands are meaningful in the current state. The state
// machine itself accepts every command; this is purely presentational.
type Controls struct {
	Start bool
	Stop  bool
}

func ControlsFor(s State) Controls {
	return Controls{
		Start: s == StateIdle,
		Stop:  s == StateRunning,
	}
}

// Consumer drains a worker's output queue on its own schedule. Each poll handles at
// most the configured batch size so a burst cannot stall the caller.
type Consumer struct {
	outputs  *Queue[RenderMessage]
	renderer Renderer
	flusher  Flusher

	config  config
	logger  *slog.Logger
	metrics *metricsRecorder

	// Owned by the polling goroutine.
	rate  *RateEstimator
	state State
	last  *Sample
}

func NewConsumer(outputs *Queue[RenderMessage], renderer Renderer, opts ...Option) *Consumer {
	config := newConfig(opts)

	logger := config.newLogger()
	metrics, err := newMetricsRecorder(config.meterProvider, config.metricsLabel())
	if err != nil {
		logger.With("error", err).Warn(logMetricsUnavailable)
		metrics = nil
	}

	c := &Consumer{
		outputs:  outputs,
		renderer: renderer,
		config:   config,
		logger:   logger,
		metrics:  metrics,
		rate:     NewRateEstimator(config.smoothing),
		state:    StateIdle,
	}
	if flusher, ok := renderer.(Flusher); ok {
		c.flusher = flusher
	}
	return c
}

// Poll drains up to the batch size and returns how many messages it handled. An empty
// queue ends the poll immediately.
func (c *Consumer) Poll() int {
	batch := c.outputs.PopBatch(c.config.batchSize)

	for _, msg := range batch {
		switch m := msg.(type) {
		case StateChanged:
			c.state = m.State
			c.renderer.RenderState(m.State, ControlsFor(m.State))
		case NewSample:
			sample := m.Sample
			c.last = &sample
			c.renderer.RenderSample(sample, c.rate.Observe(sample.Timestamp))
		}
	}

	if len(batch) > 0 && c.flusher != nil {
		if err := c.flusher.Flush(); err != nil {
			c.logger.With("error", err).Error(logFlushError)
		}
	}

	c.metrics.recordPollBatchSize(context.Background(), len(batch))
	return len(batch)
}

// Run polls every poll period until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.config.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Poll()
		}
	}
}

// State is the last state reported by the worker.
func (c *Consumer) State() State {
	return c.state
}

func (c *Consumer) Controls() Controls {
	return ControlsFor(c.state)
}

// Rate is the smoothed sample rate in Hz.
func (c *Consumer) Rate() float64 {
	return c.rate.Rate()
}

// LastSample returns the most recently rendered sample, if any.
func (c *Consumer) LastSample() (Sample, bool) {
	if c.last == nil {
		return Sample{}, false
	}
	return *c.last, true
}
