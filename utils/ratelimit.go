package samplerutils

import (
	"time"

	sampler "github.com/l0rem1psum/sampler"
	"golang.org/x/time/rate"
)

var (
	_ sampler.Renderer = &ThrottledRenderer{}
	_ sampler.Flusher  = &ThrottledRenderer{}
)

// ThrottledRenderer passes samples to the next renderer at no more than a fixed rate and
// skips the rest. State changes are always passed on.
type ThrottledRenderer struct {
	next    sampler.Renderer
	limiter *rate.Limiter
	skipped uint64
}

func NewThrottledRenderer(next sampler.Renderer, ratePerSecond float64) *ThrottledRenderer {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &ThrottledRenderer{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (t *ThrottledRenderer) RenderState(s sampler.State, c sampler.Controls) {
	t.next.RenderState(s, c)
}

func (t *ThrottledRenderer) RenderSample(s sampler.Sample, rateHz float64) {
	if !t.limiter.AllowN(time.Now(), 1) {
		t.skipped++
		return
	}
	t.next.RenderSample(s, rateHz)
}

// Skipped returns how many samples were not forwarded.
func (t *ThrottledRenderer) Skipped() uint64 {
	return t.skipped
}

func (t *ThrottledRenderer) Flush() error {
	if f, ok := t.next.(sampler.Flusher); ok {
		return f.Flush()
	}
	return nil
}
