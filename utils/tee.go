package samplerutils

import (
	"github.com/hashicorp/go-multierror"
	sampler "github.com/l0rem1psum/sampler"
	"github.com/samber/lo"
)

var (
	_ sampler.Renderer = &MultiRenderer{}
	_ sampler.Flusher  = &MultiRenderer{}
)

// MultiRenderer forwards every call to each of its renderers in order.
type MultiRenderer struct {
	renderers []sampler.Renderer
	flushers  []sampler.Flusher
}

func NewMultiRenderer(renderers ...sampler.Renderer) *MultiRenderer {
	return &MultiRenderer{
		renderers: renderers,
		flushers: lo.FilterMap(renderers, func(r sampler.Renderer, _ int) (sampler.Flusher, bool) {
			f, ok := r.(sampler.Flusher)
			return f, ok
		}),
	}
}

func (m *MultiRenderer) RenderState(s sampler.State, c sampler.Controls) {
	for _, r := range m.renderers {
		r.RenderState(s, c)
	}
}

func (m *MultiRenderer) RenderSample(s sampler.Sample, rateHz float64) {
	for _, r := range m.renderers {
		r.RenderSample(s, rateHz)
	}
}

// Flush flushes every buffering renderer, even after one of them fails.
func (m *MultiRenderer) Flush() error {
	var multierr error
	for _, f := range m.flushers {
		if err := f.Flush(); err != nil {
			multierr = multierror.Append(multierr, err)
		}
	}
	return multierr
}
