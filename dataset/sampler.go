package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrExhausted is returned by Sample when a non-resampling sampler has
// fewer examples remaining than requested.
var ErrExhausted = errors.New("sampler exhausted")

// ExampleSampler draws examples from a fixed random permutation seeded at
// construction. Each Sample call consumes from the front of the remaining
// permutation. With resampling enabled the sampler reshuffles a fresh
// permutation (re-seeded deterministically) whenever the pool runs low, so
// a single call may return more examples than the dataset holds.
//
// Two samplers constructed with the same seed and dataset produce identical
// output sequences for identical call sequences. Not safe for concurrent
// use; the experiment runner owns its samplers exclusively.
type ExampleSampler struct {
	seed          int64
	dataset       []Example
	allowResample bool

	perm       []int
	pos        int
	reshuffles int64
}

// NewExampleSampler constructs a sampler over dataset with the given seed.
func NewExampleSampler(seed int64, dataset []Example, allowResample bool) *ExampleSampler {
	s := &ExampleSampler{
		seed:          seed,
		dataset:       dataset,
		allowResample: allowResample,
	}
	s.perm = rand.New(rand.NewSource(seed)).Perm(len(dataset))
	return s
}

// Sample returns the next n examples from the permutation.
func (s *ExampleSampler) Sample(n int) ([]Example, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must be non-negative, got %d", n)
	}
	if len(s.dataset) == 0 && n > 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrExhausted)
	}

	out := make([]Example, 0, n)
	for len(out) < n {
		if s.pos >= len(s.perm) {
			if !s.allowResample {
				return nil, fmt.Errorf("%w: requested %d but only %d remained of %d",
					ErrExhausted, n, len(out), len(s.dataset))
			}
			s.reshuffle()
		}
		out = append(out, s.dataset[s.perm[s.pos]])
		s.pos++
	}
	return out, nil
}

// Remaining reports how many examples are left before the current
// permutation is exhausted.
func (s *ExampleSampler) Remaining() int {
	return len(s.perm) - s.pos
}

// reshuffle starts a fresh permutation. The new source is derived from the
// base seed and a reshuffle counter so repeated runs stay deterministic.
func (s *ExampleSampler) reshuffle() {
	s.reshuffles++
	src := rand.NewSource(s.seed + s.reshuffles)
	s.perm = rand.New(src).Perm(len(s.dataset))
	s.pos = 0
}
