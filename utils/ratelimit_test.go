package samplerutils_test

import (
	"math/rand"
	"testing"
	"time"

	sampler "github.com/l0rem1psum/sampler"
	samplerutils "github.com/l0rem1psum/sampler/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	states  int
	samples []sampler.Sample
	flushes int
}

func (r *countingRenderer) RenderState(sampler.State, sampler.Controls) { r.states++ }
func (r *countingRenderer) RenderSample(s sampler.Sample, _ float64) {
	r.samples = append(r.samples, s)
}
func (r *countingRenderer) Flush() error { r.flushes++; return nil }

func TestThrottledRenderer_FastInput(t *testing.T) {
	var (
		ratePerSecond float64 = 5 + rand.Float64()*(20-5) // Random float64 between 5 and 20
		inputRate     float64 = ratePerSecond * (20 + rand.Float64()*20)
		duration              = 2 * time.Second
		tolerance     float64 = 0.1
	)

	next := &countingRenderer{}
	throttled := samplerutils.NewThrottledRenderer(next, ratePerSecond)

	start := time.Now()
	seq := uint64(0)
	for time.Since(start) < duration {
		seq++
		throttled.RenderSample(sampler.Sample{Seq: seq, Timestamp: time.Now()}, 0)
		time.Sleep(time.Duration(1e9 / inputRate))
	}

	observedRate := float64(len(next.samples)) / time.Since(start).Seconds()
	require.InDelta(t, ratePerSecond, observedRate, ratePerSecond*tolerance)
	assert.Equal(t, seq, uint64(len(next.samples))+throttled.Skipped())
}

func TestThrottledRenderer_SlowInputPassesEverything(t *testing.T) {
	next := &countingRenderer{}
	throttled := samplerutils.NewThrottledRenderer(next, 100)

	for i := 0; i < 5; i++ {
		throttled.RenderSample(sampler.Sample{Seq: uint64(i)}, 0)
		time.Sleep(20 * time.Millisecond)
	}

	assert.Len(t, next.samples, 5)
	assert.Zero(t, throttled.Skipped())
}

func TestThrottledRenderer_StateAndFlushPassThrough(t *testing.T) {
	next := &countingRenderer{}
	throttled := samplerutils.NewThrottledRenderer(next, 1)

	for i := 0; i < 10; i++ {
		throttled.RenderState(sampler.StateRunning, sampler.ControlsFor(sampler.StateRunning))
	}
	require.NoError(t, throttled.Flush())

	assert.Equal(t, 10, next.states)
	assert.Equal(t, 1, next.flushes)
}
