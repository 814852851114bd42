package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	sampler "github.com/l0rem1psum/sampler"
	samplerutils "github.com/l0rem1psum/sampler/utils"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace bounds how long we wait for the worker after sending Shutdown.
const shutdownGrace = 100 * time.Millisecond

// logRenderer renders to the structured log. Samples are logged at debug level.
type logRenderer struct {
	logger *slog.Logger
}

func (r *logRenderer) RenderState(s sampler.State, c sampler.Controls) {
	r.logger.Info("State changed", "state", s.String(), "start_enabled", c.Start, "stop_enabled", c.Stop)
}

func (r *logRenderer) RenderSample(s sampler.Sample, rateHz float64) {
	r.logger.Debug("Sample", "seq", s.Seq, "value", fmt.Sprintf("%0.6f", s.Value), "rate_hz", fmt.Sprintf("%0.1f", rateHz))
}

func runHeadless(
	ctx context.Context,
	logger *slog.Logger,
	controller *sampler.Controller,
	outputs *sampler.Queue[sampler.RenderMessage],
	renderers []sampler.Renderer,
	opts []sampler.Option,
) error {
	// Log lines for every sample would drown the output at high rates.
	throttled := samplerutils.NewThrottledRenderer(&logRenderer{logger: logger}, 5)
	consumer := sampler.NewConsumer(outputs, samplerutils.NewMultiRenderer(append(renderers, throttled)...), opts...)

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()

	g, gctx := errgroup.WithContext(consumerCtx)
	g.Go(func() error {
		return consumer.Run(gctx)
	})

	g.Go(func() error {
		defer cancelConsumer()

		if err := controller.Start(); err != nil && !errors.Is(err, sampler.ErrSamplerStopped) {
			return err
		}

		select {
		case <-time.After(duration):
		case <-gctx.Done():
		}

		if err := controller.Stop(); err != nil && !errors.Is(err, sampler.ErrSamplerStopped) {
			return err
		}

		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := controller.Close(closeCtx); err != nil {
			return fmt.Errorf("failed to shut down sampler: %w", err)
		}

		// Give the consumer one last look at what the worker left behind.
		time.Sleep(2 * sampler.DefaultPollPeriod)
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	for consumer.Poll() > 0 {
	}
	printSummary(controller, consumer, throttled)
	return err
}

func printSummary(controller *sampler.Controller, consumer *sampler.Consumer, throttled *samplerutils.ThrottledRenderer) {
	stats := controller.Stats()

	lastValue := "-"
	if s, ok := consumer.LastSample(); ok {
		lastValue = fmt.Sprintf("%0.6f", s.Value)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Metric", "Value"})
	table.Bulk([][]string{
		{"Instance", controller.ID()},
		{"Final state", consumer.State().String()},
		{"Samples emitted", fmt.Sprint(stats.SamplesEmitted)},
		{"Outputs dropped", fmt.Sprint(stats.OutputsDropped)},
		{"Commands applied", fmt.Sprint(stats.CommandsApplied)},
		{"Commands ignored", fmt.Sprint(stats.CommandsIgnored)},
		{"Samples not logged", fmt.Sprint(throttled.Skipped())},
		{"Smoothed rate (Hz)", fmt.Sprintf("%0.1f", consumer.Rate())},
		{"Last value", lastValue},
	})
	table.Render()
}
