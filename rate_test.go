package sampler_test

import (
	"testing"
	"time"

	sampler "github.com/l0rem1psum/sampler"
	"github.com/stretchr/testify/assert"
)

func TestRateEstimator_SeededToZero(t *testing.T) {
	r := sampler.NewRateEstimator(0.2)
	assert.Equal(t, 0.0, r.Observe(time.Now()))
	assert.Equal(t, 0.0, r.Rate())
}

func TestRateEstimator_SecondSample(t *testing.T) {
	r := sampler.NewRateEstimator(0.2)
	start := time.Now()
	r.Observe(start)

	// 0.8*0 + 0.2*(1/0.05)
	assert.InDelta(t, 4.0, r.Observe(start.Add(50*time.Millisecond)), 1e-9)
}

func TestRateEstimator_ConvergesAtConstantRate(t *testing.T) {
	const hz = 20.0
	r := sampler.NewRateEstimator(0.2)

	start := time.Now()
	period := time.Duration(float64(time.Second) / hz)
	for i := 0; i < 20; i++ {
		r.Observe(start.Add(time.Duration(i) * period))
	}

	assert.InDelta(t, hz, r.Rate(), hz*0.05)
}

func TestRateEstimator_EqualTimestampsStayFinite(t *testing.T) {
	r := sampler.NewRateEstimator(0.2)
	now := time.Now()
	r.Observe(now)
	got := r.Observe(now)

	// Δt is clamped to 1µs
	assert.InDelta(t, 0.2*1e6, got, 1e-3)
}

func TestRateEstimator_InvalidAlphaFallsBack(t *testing.T) {
	r := sampler.NewRateEstimator(0)
	start := time.Now()
	r.Observe(start)
	assert.InDelta(t, sampler.DefaultSmoothing*10, r.Observe(start.Add(100*time.Millisecond)), 1e-9)
}
