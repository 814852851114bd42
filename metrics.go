package sampler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsSamplesEmitted = "sampler_samples_emitted_total"
	metricsOutputsDropped = "sampler_outputs_dropped_total"
	metricsCommands       = "sampler_commands_total"
	metricsEmitLag        = "sampler_emit_lag_microseconds"
	metricsPollBatchSize  = "sampler_poll_batch_size"
)

type metricsRecorder struct {
	samplesEmitted metric.Int64Counter
	outputsDropped metric.Int64Counter
	commands       metric.Int64Counter
	emitLag        metric.Int64Histogram
	pollBatchSize  metric.Int64Histogram
}

// newMetricsRecorder returns nil when mp is nil; every record method is a no-op on a nil
// recorder.
func newMetricsRecorder(mp metric.MeterProvider, label string) (*metricsRecorder, error) {
	if mp == nil {
		return nil, nil
	}

	meter := mp.Meter("sampler", metric.WithInstrumentationAttributes(
		attribute.String("label", label),
	))

	samplesEmitted, err := meter.Int64Counter(
		metricsSamplesEmitted,
		metric.WithDescription("Total number of samples emitted by the worker"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	outputsDropped, err := meter.Int64Counter(
		metricsOutputsDropped,
		metric.WithDescription("Total number of render messages evicted from a full output queue"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	commands, err := meter.Int64Counter(
		metricsCommands,
		metric.WithDescription("Total number of commands observed by the worker"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	emitLag, err := meter.Int64Histogram(
		metricsEmitLag,
		metric.WithDescription("Delay between a sample deadline and its emission"),
		metric.WithUnit("μs"),
	)
	if err != nil {
		return nil, err
	}

	pollBatchSize, err := meter.Int64Histogram(
		metricsPollBatchSize,
		metric.WithDescription("Number of messages drained by a consumer poll"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsRecorder{
		samplesEmitted: samplesEmitted,
		outputsDropped: outputsDropped,
		commands:       commands,
		emitLag:        emitLag,
		pollBatchSize:  pollBatchSize,
	}, nil
}

func (m *metricsRecorder) recordSampleEmitted(ctx context.Context) {
	if m == nil {
		return
	}

	m.samplesEmitted.Add(ctx, 1)
}

func (m *metricsRecorder) recordOutputDropped(ctx context.Context, kind string) {
	if m == nil {
		return
	}

	m.outputsDropped.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("kind", kind),
		),
	)
}

func (m *metricsRecorder) recordCommand(ctx context.Context, command Command, applied bool) {
	if m == nil {
		return
	}

	result := "noop"
	if applied {
		result = "applied"
	}

	m.commands.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("command", command.String()),
			attribute.String("result", result),
		),
	)
}

func (m *metricsRecorder) recordEmitLag(ctx context.Context, lag time.Duration) {
	if m == nil {
		return
	}

	m.emitLag.Record(ctx, lag.Microseconds())
}

func (m *metricsRecorder) recordPollBatchSize(ctx context.Context, n int) {
	if m == nil {
		return
	}

	m.pollBatchSize.Record(ctx, int64(n))
}
