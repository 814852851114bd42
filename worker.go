package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Source produces the value of each sample.
//   - Init is called once by Spawn before the worker goroutine starts
//   - Read is called on the worker goroutine once per emission tick
//   - Close is called once when the worker leaves its loop
type Source interface {
	Init() error
	Read() (float64, error)
	Close() error
}

// Stats is a snapshot of the worker's counters.
type Stats struct {
	SamplesEmitted  uint64
	OutputsDropped  uint64
	CommandsApplied uint64
	CommandsIgnored uint64
}

type counters struct {
	samplesEmitted  atomic.Uint64
	outputsDropped  atomic.Uint64
	commandsApplied atomic.Uint64
	commandsIgnored atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		SamplesEmitted:  c.samplesEmitted.Load(),
		OutputsDropped:  c.outputsDropped.Load(),
		CommandsApplied: c.commandsApplied.Load(),
		CommandsIgnored: c.commandsIgnored.Load(),
	}
}

// Spawn initializes source and starts the worker goroutine in StateIdle. The returned
// Controller is the only way to drive the worker; the returned queue carries its
// StateChanged and NewSample messages and is meant to be drained by a Consumer.
//
// Cancelling ctx has the same effect as sending CommandShutdown.
func Spawn(ctx context.Context, source Source, opts ...Option) (*Controller, *Queue[RenderMessage], error) {
	config := newConfig(opts)

	id := uuid.NewString()
	logger := config.newLogger().With("instance", id)

	metrics, err := newMetricsRecorder(config.meterProvider, config.metricsLabel())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	if err := source.Init(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnableToStart, err)
	}

	w := newWorker(source, config, logger, metrics)
	go w.run(ctx)

	return &Controller{
		id:       id,
		logger:   logger,
		commands: w.commands,
		doneCh:   w.doneCh,
		counters: w.counters,
		closeErr: func() error { return w.closeErr },
	}, w.outputs, nil
}

type worker struct {
	source  Source
	config  config
	logger  *slog.Logger
	metrics *metricsRecorder

	// dropLogLimiter keeps a saturated output queue from flooding the log.
	dropLogLimiter *rate.Limiter

	// Owned by the worker goroutine only.
	state State
	pacer *pacer
	seq   uint64

	commands *Queue[Command]
	outputs  *Queue[RenderMessage]
	counters *counters
	doneCh   chan struct{}
	closeErr error // written before doneCh is closed
}

func newWorker(source Source, config config, logger *slog.Logger, metrics *metricsRecorder) *worker {
	return &worker{
		source:         source,
		config:         config,
		logger:         logger,
		metrics:        metrics,
		dropLogLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		state:          StateIdle,
		pacer:          newPacer(config.period(), time.Now()),
		commands:       NewQueue[Command](config.commandQueueSize),
		outputs:        NewQueue[RenderMessage](config.outputQueueSize),
		counters:       &counters{},
		doneCh:         make(chan struct{}),
	}
}

// run is the worker goroutine. It leaves the loop only once the state is Stopping.
func (w *worker) run(ctx context.Context) {
	defer w.cleanup()

	w.logger.Info(logWorkerStarted, "rate_hz", w.config.rateHz, "period", w.pacer.period)

	timer := time.NewTimer(w.config.idleSleep)
	defer timer.Stop()

	for {
		w.applyPending(ctx)

		if ctx.Err() != nil && w.state != StateStopping {
			w.logger.Info(logContextDone)
			w.apply(ctx, CommandShutdown)
		}

		if w.state == StateStopping {
			return
		}

		if now := time.Now(); w.state == StateRunning && w.pacer.due(now) {
			w.emit(ctx, now)
			w.pacer.advance()
		}

		wait := w.config.idleSleep
		if w.state == StateRunning {
			wait = min(wait, w.pacer.until(time.Now()))
		}
		if wait <= 0 {
			continue
		}

		timer.Reset(wait)
		select {
		case cmd := <-w.commands.C():
			w.apply(ctx, cmd)
		case <-timer.C:
		case <-ctx.Done():
		}
	}
}

func (w *worker) applyPending(ctx context.Context) {
	for {
		cmd, ok := w.commands.TryPop()
		if !ok {
			return
		}
		w.apply(ctx, cmd)
	}
}

func (w *worker) apply(ctx context.Context, cmd Command) {
	from := w.state
	to, effect := Transition(from, cmd)

	w.metrics.recordCommand(ctx, cmd, from != to)
	if from == to {
		w.counters.commandsIgnored.Add(1)
		w.logger.Debug(logCommandIgnored, "command", cmd.String(), "state", from.String())
		return
	}
	w.counters.commandsApplied.Add(1)

	w.transitionTo(to)

	switch effect {
	case EffectEnableEmission:
		w.pacer.reset(time.Now())
		w.logger.Info(logEmissionEnabled)
	case EffectDisableEmission:
		w.logger.Info(logEmissionDisabled)
	case EffectExit:
		w.logger.Info(logShutdownReceived)
	}

	w.publish(ctx, StateChanged{State: to})
}

func (w *worker) transitionTo(newState State) {
	oldState := w.state
	w.state = newState
	w.logger.Debug(logStateTransition, "from", oldState.String(), "to", newState.String())
}

func (w *worker) emit(ctx context.Context, now time.Time) {
	w.metrics.recordEmitLag(ctx, w.pacer.lag(now))

	value, err := w.source.Read()
	if err != nil {
		w.logger.With("error", err).Error(logSourceReadError)
		return
	}

	w.seq++
	w.publish(ctx, NewSample{Sample: Sample{
		Seq:       w.seq,
		Value:     value,
		Timestamp: time.Now(),
	}})
	w.counters.samplesEmitted.Add(1)
	w.metrics.recordSampleEmitted(ctx)
}

func (w *worker) publish(ctx context.Context, msg RenderMessage) {
	evicted, dropped := w.outputs.PushDropOldest(msg)
	if !dropped {
		return
	}

	kind := "sample"
	if _, ok := evicted.(StateChanged); ok {
		kind = "state"
	}

	total := w.counters.outputsDropped.Add(1)
	w.metrics.recordOutputDropped(ctx, kind)
	if w.dropLogLimiter.Allow() {
		w.logger.Warn(logOutputQueueFullDropOldest, "kind", kind, "dropped_total", total)
	}
}

func (w *worker) cleanup() {
	if err := w.source.Close(); err != nil {
		w.logger.With("error", err).Error(logSourceCloseError)
		w.closeErr = err
	}
	w.logger.Info(logWorkerStopped, "samples_emitted", w.counters.samplesEmitted.Load())
	close(w.doneCh)
}
