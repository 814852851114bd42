package sampler

import "time"

// pacer tracks an absolute emission deadline. Advancing adds exactly one period to the
// previous deadline so scheduling jitter does not accumulate.
type pacer struct {
	period   time.Duration
	deadline time.Time
}

func newPacer(period time.Duration, now time.Time) *pacer {
	return &pacer{
		period:   max(time.Nanosecond, period),
		deadline: now,
	}
}

// reset makes the next tick due immediately.
func (p *pacer) reset(now time.Time) {
	p.deadline = now
}

func (p *pacer) due(now time.Time) bool {
	return !now.Before(p.deadline)
}

func (p *pacer) advance() {
	p.deadline = p.deadline.Add(p.period)
}

func (p *pacer) until(now time.Time) time.Duration {
	return p.deadline.Sub(now)
}

// lag is how far past the deadline now is.
func (p *pacer) lag(now time.Time) time.Duration {
	return max(0, now.Sub(p.deadline))
}
