package sampler

import "time"

// minInterArrival keeps two samples with equal timestamps from producing an infinite rate.
const minInterArrival = time.Microsecond

// RateEstimator smooths the inter-arrival rate of samples with an exponentially weighted
// moving average: ema = (1-α)·ema + α·(1/Δt). The first observation has no Δt and leaves
// the estimate at 0.
type RateEstimator struct {
	alpha float64
	ema   float64
	last  time.Time
	seen  bool
}

func NewRateEstimator(alpha float64) *RateEstimator {
	if !(alpha > 0 && alpha <= 1) {
		alpha = DefaultSmoothing
	}
	return &RateEstimator{alpha: alpha}
}

// Observe records an arrival at t and returns the updated estimate in Hz.
func (r *RateEstimator) Observe(t time.Time) float64 {
	if !r.seen {
		r.seen = true
		r.last = t
		r.ema = 0
		return r.ema
	}

	dt := max(t.Sub(r.last), minInterArrival)
	r.last = t
	r.ema = (1-r.alpha)*r.ema + r.alpha/dt.Seconds()
	return r.ema
}

// Rate returns the current estimate in Hz.
func (r *RateEstimator) Rate() float64 {
	return r.ema
}
