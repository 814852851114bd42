package sampler

import "time"

// Sample is a single reading produced by the worker on an emission tick.
type Sample struct {
	Seq       uint64 // 1-based, monotonic per worker
	Value     float64
	Timestamp time.Time
}

// RenderMessage is what the worker publishes to the consumer. It is either a
// StateChanged or a NewSample.
type RenderMessage interface {
	renderMessage()
}

type (
	StateChanged struct {
		State State
	}
	NewSample struct {
		Sample Sample
	}
)

func (StateChanged) renderMessage() {}
func (NewSample) renderMessage()    {}
