package samplerutils

import sampler "github.com/l0rem1psum/sampler"

var _ sampler.Source = &FuncSource{}

// FuncSource adapts a plain function to sampler.Source.
type FuncSource struct {
	fn func() (float64, error)
}

func NewFuncSource(fn func() (float64, error)) *FuncSource {
	return &FuncSource{
		fn: fn,
	}
}

func (s *FuncSource) Init() error {
	return nil
}

func (s *FuncSource) Read() (float64, error) {
	return s.fn()
}

func (s *FuncSource) Close() error {
	return nil
}
