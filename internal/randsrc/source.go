// Package randsrc provides the single seeded random stream shared by every dataset builder.
//
// A Source is seeded once and never reseeded. All draws are deterministic
// functions of the seed and the order in which they are made, so builders
// must draw in a fixed order to keep output files reproducible.
package randsrc

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source wraps a PCG stream and exposes the draw kinds the builders need.
// It is not safe for concurrent use.
type Source struct {
	seed uint64
	src  rand.Source
	rng  *rand.Rand
}

// New creates a Source seeded with seed.
func New(seed uint64) *Source {
	src := rand.NewPCG(seed, seed)
	return &Source{
		seed: seed,
		src:  src,
		rng:  rand.New(src),
	}
}

// Seed returns the seed the stream was created with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Gauss draws from a normal distribution with mean mu and standard deviation sigma.
// A zero sigma returns mu without consuming a draw.
func (s *Source) Gauss(mu, sigma float64) float64 {
	if sigma == 0 {
		return mu
	}
	n := distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}
	return n.Rand()
}

// Uniform draws uniformly from [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	u := distuv.Uniform{Min: lo, Max: hi, Src: s.src}
	return u.Rand()
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// Choice returns one element of values picked uniformly. It panics on an empty slice.
func (s *Source) Choice(values []int) int {
	return values[s.rng.IntN(len(values))]
}
