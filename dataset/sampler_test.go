package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeExamples(n int) []Example {
	examples := make([]Example, n)
	for i := range examples {
		examples[i] = Example{
			ID:          fmt.Sprintf("ex%d", i),
			Input:       fmt.Sprintf("input%d", i),
			ScoringData: map[string]any{"solution": fmt.Sprintf("solution%d", i)},
		}
	}
	return examples
}

func ids(examples []Example) []string {
	out := make([]string, len(examples))
	for i, ex := range examples {
		out[i] = ex.ID
	}
	return out
}

func TestSamplerBasic(t *testing.T) {
	sampler := NewExampleSampler(42, makeExamples(3), false)

	sampled, err := sampler.Sample(2)
	require.NoError(t, err)
	assert.Len(t, sampled, 2)
	assert.Equal(t, 1, sampler.Remaining())
}

func TestSamplerDeterministic(t *testing.T) {
	examples := makeExamples(10)

	s1 := NewExampleSampler(42, examples, false)
	s2 := NewExampleSampler(42, examples, false)

	a, err := s1.Sample(5)
	require.NoError(t, err)
	b, err := s2.Sample(5)
	require.NoError(t, err)

	assert.Equal(t, ids(a), ids(b))

	// Subsequent calls continue the same sequence.
	a2, err := s1.Sample(3)
	require.NoError(t, err)
	b2, err := s2.Sample(3)
	require.NoError(t, err)
	assert.Equal(t, ids(a2), ids(b2))
}

func TestSamplerDifferentSeeds(t *testing.T) {
	examples := makeExamples(50)

	a, err := NewExampleSampler(1, examples, false).Sample(20)
	require.NoError(t, err)
	b, err := NewExampleSampler(2, examples, false).Sample(20)
	require.NoError(t, err)

	assert.NotEqual(t, ids(a), ids(b))
}

func TestSamplerNoReplacementWithinPermutation(t *testing.T) {
	sampler := NewExampleSampler(7, makeExamples(10), false)

	sampled, err := sampler.Sample(10)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, ex := range sampled {
		assert.False(t, seen[ex.ID], "example %s drawn twice", ex.ID)
		seen[ex.ID] = true
	}
}

func TestSamplerExhaustion(t *testing.T) {
	sampler := NewExampleSampler(42, makeExamples(2), false)

	_, err := sampler.Sample(1)
	require.NoError(t, err)

	// Cumulative n now exceeds the dataset size.
	_, err = sampler.Sample(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSamplerResampleNeverExhausts(t *testing.T) {
	sampler := NewExampleSampler(42, makeExamples(3), true)

	// A single call larger than the dataset succeeds.
	sampled, err := sampler.Sample(10)
	require.NoError(t, err)
	assert.Len(t, sampled, 10)

	// And so do repeated calls.
	for i := 0; i < 5; i++ {
		sampled, err = sampler.Sample(4)
		require.NoError(t, err)
		assert.Len(t, sampled, 4)
	}
}

func TestSamplerResampleDeterministic(t *testing.T) {
	examples := makeExamples(3)

	s1 := NewExampleSampler(9, examples, true)
	s2 := NewExampleSampler(9, examples, true)

	a, err := s1.Sample(20)
	require.NoError(t, err)
	b, err := s2.Sample(20)
	require.NoError(t, err)

	assert.Equal(t, ids(a), ids(b))
}

func TestSamplerEmptyDataset(t *testing.T) {
	sampler := NewExampleSampler(1, nil, true)

	_, err := sampler.Sample(1)
	assert.ErrorIs(t, err, ErrExhausted)

	sampled, err := sampler.Sample(0)
	require.NoError(t, err)
	assert.Empty(t, sampled)
}
