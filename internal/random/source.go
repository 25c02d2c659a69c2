package random

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed is the seed used by the validation suites.
const DefaultSeed uint64 = 1095

// Source is a deterministic variate stream.
//
// Thread-safety: Source is NOT safe for concurrent use. Give each goroutine
// its own Source, seeded independently.
type Source struct {
	seed  uint64
	src   rand.Source
	rnd   *rand.Rand
	draws int64
}

// New creates a Source seeded with seed.
func New(seed uint64) *Source {
	src := rand.NewSource(seed)
	return &Source{
		seed: seed,
		src:  src,
		rnd:  rand.New(src),
	}
}

// Seed reseeds the stream. All generator state is replaced, so two runs that
// start from the same seed are indistinguishable.
func (s *Source) Seed(seed uint64) {
	s.seed = seed
	s.src.Seed(seed)
	s.draws = 0
}

// Reset reseeds with the most recent seed.
func (s *Source) Reset() {
	s.Seed(s.seed)
}

// CurrentSeed returns the seed the stream was last (re)seeded with.
func (s *Source) CurrentSeed() uint64 {
	return s.seed
}

// Draws returns the number of variates requested since the last (re)seed.
func (s *Source) Draws() int64 {
	return s.draws
}

// Uniform returns a variate in [0, 1).
func (s *Source) Uniform() float64 {
	s.draws++
	return s.rnd.Float64()
}

// Normal returns a variate from N(mu, sigma²). A zero sigma returns mu
// without consuming the stream.
func (s *Source) Normal(mu, sigma float64) float64 {
	if sigma == 0 {
		return mu
	}
	s.draws++
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}

// Gamma returns a variate from a gamma distribution with the given shape and
// scale (mean shape·scale). Both must be positive.
func (s *Source) Gamma(shape, scale float64) float64 {
	if !(shape > 0) || !(scale > 0) || math.IsInf(shape, 0) || math.IsInf(scale, 0) {
		panic(fmt.Sprintf("random: invalid gamma parameters shape=%v scale=%v", shape, scale))
	}
	s.draws++
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: s.src}.Rand()
}

// GammaMeanSD returns a gamma variate parameterized by its mean and standard
// deviation rather than shape and scale.
func (s *Source) GammaMeanSD(mean, sd float64) float64 {
	shape := (mean * mean) / (sd * sd)
	scale := (sd * sd) / mean
	return s.Gamma(shape, scale)
}
