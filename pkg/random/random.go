// Package random provides a seedable randomness source plus the weighted
// sampling primitives the record generators are built on.
package random

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrInvalidDistribution is returned when a weighted draw is requested over an
// empty set or a set whose weights sum to zero.
var ErrInvalidDistribution = errors.New("distribution must contain at least one item with positive weight")

// ErrInvalidProbability is returned when a probability falls outside [0, 1].
// Out-of-range values are never clamped; a misconfigured probability must fail
// loudly rather than silently skew output.
var ErrInvalidProbability = errors.New("probability must be in [0, 1]")

// Source is a seeded pseudo-random source. Every generation run owns exactly
// one Source so that a fixed seed reproduces the full batch. Not safe for
// concurrent use.
type Source struct {
	rng  *rand.Rand
	seed int64
}

// New returns a Source seeded with the given value.
func New(seed int64) *Source {
	return &Source{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// NewFromTime returns a Source seeded from the current wall clock.
func NewFromTime() *Source {
	return New(time.Now().UnixNano())
}

// Seed returns the seed the Source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Intn returns a pseudo-random number in [0, n).
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// IntBetween returns a pseudo-random number in [low, high], inclusive on both
// ends.
func (s *Source) IntBetween(low, high int) int {
	if high < low {
		low, high = high, low
	}
	return s.rng.Intn(high-low+1) + low
}

// Read fills p with pseudo-random bytes. It always returns len(p) and a nil
// error, satisfying io.Reader so the Source can seed UUID generation.
func (s *Source) Read(p []byte) (int, error) {
	return s.rng.Read(p)
}

// BiasedBool returns true with the given probability.
func (s *Source) BiasedBool(probability float64) (bool, error) {
	if probability < 0 || probability > 1 {
		return false, fmt.Errorf("%w: got %v", ErrInvalidProbability, probability)
	}
	return s.rng.Float64() < probability, nil
}

// Weighted pairs a candidate value with its selection weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// WeightedChoice draws one value with probability proportional to its weight.
// Items with zero or negative weight are never selected.
func WeightedChoice[T any](src *Source, items []Weighted[T]) (T, error) {
	var zero T

	var total float64
	for _, item := range items {
		if item.Weight > 0 {
			total += item.Weight
		}
	}
	if len(items) == 0 || total <= 0 {
		return zero, ErrInvalidDistribution
	}

	target := src.Float64() * total
	var cumulative float64
	for _, item := range items {
		if item.Weight <= 0 {
			continue
		}
		cumulative += item.Weight
		if cumulative > target {
			return item.Value, nil
		}
	}

	// Float accumulation can land exactly on total; fall back to the last
	// selectable item.
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Weight > 0 {
			return items[i].Value, nil
		}
	}
	return zero, ErrInvalidDistribution
}

// Pick returns a uniformly random element of items.
func Pick[T any](src *Source, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrInvalidDistribution
	}
	return items[src.Intn(len(items))], nil
}

// Shuffle permutes items in place using Fisher-Yates.
func Shuffle[T any](src *Source, items []T) {
	src.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
