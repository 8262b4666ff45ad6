package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/gridgo/engine/memory"
	"github.com/hupe1980/gridgo/meta"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillGaussian fills dst with standard normally distributed values.
func (r *RNG) FillGaussian(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.NormFloat64()
	}
}

// GridDataset declares a synthetic forecast file: a timeSteps x points
// float64 grid over an unlimited time axis, an hourly time coordinate
// and a scalar format version.
func GridDataset(rng *RNG, timeSteps, points int) memory.Dataset {
	values := make([]float64, timeSteps*points)
	rng.FillUniform(values)

	times := make([]int64, timeSteps)
	for i := range times {
		times[i] = int64(i) * 3600
	}

	return memory.Dataset{
		Attrs: []meta.Attr{
			{Name: "title", Value: "synthetic forecast grid"},
		},
		Dims: []meta.Dim{
			{Name: "time", Size: timeSteps},
			{Name: "point", Size: points},
		},
		Unlimited: []string{"time"},
		Vars: []memory.Var{
			{
				Name:   "time",
				Dims:   []string{"time"},
				Values: times,
				Attrs:  []meta.Attr{{Name: "units", Value: "seconds since 2024-01-01"}},
			},
			{
				Name:   "temp",
				Dims:   []string{"time", "point"},
				Values: values,
				Attrs:  []meta.Attr{{Name: "units", Value: "K"}},
			},
			{
				Name:   "version",
				Values: int32(1),
			},
		},
	}
}
