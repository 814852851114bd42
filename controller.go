package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Controller is the command surface of a spawned worker. It has no access to the
// worker's state; the state is only observable through StateChanged messages.
type Controller struct {
	id       string
	logger   *slog.Logger
	commands *Queue[Command]
	doneCh   <-chan struct{}
	counters *counters
	closeErr func() error
}

// ID returns the instance id attached to the worker's log records.
func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Start() error {
	return c.Send(CommandStart)
}

func (c *Controller) Stop() error {
	return c.Send(CommandStop)
}

func (c *Controller) Shutdown() error {
	return c.Send(CommandShutdown)
}

// Send enqueues cmd without blocking. A full command queue is reported as
// ErrCommandQueueFull; the command is never silently dropped.
func (c *Controller) Send(cmd Command) error {
	select {
	case <-c.doneCh:
		return ErrSamplerStopped
	default:
	}

	if err := c.commands.TryPush(cmd); err != nil {
		c.logger.Warn(logCommandQueueFull, "command", cmd.String(), "capacity", c.commands.Cap())
		return fmt.Errorf("%w: %s", ErrCommandQueueFull, cmd)
	}
	return nil
}

// SendContext enqueues cmd, waiting for room until ctx is done or the worker exits.
func (c *Controller) SendContext(ctx context.Context, cmd Command) error {
	select {
	case <-c.doneCh:
		return ErrSamplerStopped
	default:
	}

	select {
	case c.commands.ch <- cmd:
		return nil
	case <-c.doneCh:
		return ErrSamplerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close sends CommandShutdown and waits for the worker to exit or ctx to be done.
func (c *Controller) Close(ctx context.Context) error {
	if err := c.SendContext(ctx, CommandShutdown); err != nil && !errors.Is(err, ErrSamplerStopped) {
		return err
	}

	select {
	case <-c.doneCh:
		return c.closeErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the worker goroutine has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.doneCh
}

// Wait blocks until the worker exits and returns the error from closing its source.
func (c *Controller) Wait() error {
	<-c.doneCh
	return c.closeErr()
}

func (c *Controller) Stats() Stats {
	return c.counters.snapshot()
}
