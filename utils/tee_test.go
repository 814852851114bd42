package samplerutils_test

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	sampler "github.com/l0rem1psum/sampler"
	samplerutils "github.com/l0rem1psum/sampler/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainRenderer struct {
	samples int
}

func (r *plainRenderer) RenderState(sampler.State, sampler.Controls) {}
func (r *plainRenderer) RenderSample(sampler.Sample, float64)        { r.samples++ }

type failingFlusher struct {
	plainRenderer
	err error
}

func (f *failingFlusher) Flush() error { return f.err }

func TestMultiRenderer_ForwardsToAll(t *testing.T) {
	a, b := &countingRenderer{}, &plainRenderer{}
	m := samplerutils.NewMultiRenderer(a, b)

	m.RenderState(sampler.StateIdle, sampler.ControlsFor(sampler.StateIdle))
	m.RenderSample(sampler.Sample{Seq: 1}, 0)
	m.RenderSample(sampler.Sample{Seq: 2}, 0)

	assert.Equal(t, 1, a.states)
	assert.Len(t, a.samples, 2)
	assert.Equal(t, 2, b.samples)

	require.NoError(t, m.Flush())
	assert.Equal(t, 1, a.flushes)
}

func TestMultiRenderer_FlushCollectsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	ok := &countingRenderer{}
	m := samplerutils.NewMultiRenderer(&failingFlusher{err: errA}, ok, &failingFlusher{err: errB})

	err := m.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, err.(*multierror.Error).Errors, 2)
	assert.Equal(t, 1, ok.flushes, "a failing flusher does not stop the others")
}
