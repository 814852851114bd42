package samplerutils

import (
	"math/rand/v2"
	"time"

	sampler "github.com/l0rem1psum/sampler"
)

var _ sampler.Source = &UniformSource{}

// UniformSource reads uniformly distributed values in [0, 1).
type UniformSource struct {
	seed uint64
	rng  *rand.Rand
}

// NewUniformSource creates a source seeded with seed. A zero seed picks one from the
// current time.
func NewUniformSource(seed uint64) *UniformSource {
	return &UniformSource{seed: seed}
}

func (s *UniformSource) Init() error {
	seed := s.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return nil
}

func (s *UniformSource) Read() (float64, error) {
	return s.rng.Float64(), nil
}

func (s *UniformSource) Close() error {
	return nil
}
