package selection

import (
	"math/rand/v2"

	"innario/internal/hymnal"
)

// Sampler draws hymns from candidate pools. One requires a non-empty pool and
// Sample requires k <= len(pool); the engine checks both before drawing.
type Sampler interface {
	One(pool []hymnal.Hymn) hymnal.Hymn
	Sample(pool []hymnal.Hymn, k int) []hymnal.Hymn
}

// NewSampler returns the default Sampler. It draws uniformly via the shared
// math/rand/v2 generators and is safe for concurrent use.
func NewSampler() Sampler {
	return defaultSampler{}
}

type defaultSampler struct{}

func (defaultSampler) One(pool []hymnal.Hymn) hymnal.Hymn {
	return pool[rand.IntN(len(pool))]
}

func (defaultSampler) Sample(pool []hymnal.Hymn, k int) []hymnal.Hymn {
	out := make([]hymnal.Hymn, len(pool))
	copy(out, pool)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:k]
}

// NewSeededSampler returns a deterministic Sampler for a fixed seed. It keeps
// its own generator and is not safe for concurrent use; it exists for tests
// and the CLI preview.
func NewSeededSampler(seed uint64) Sampler {
	return &seededSampler{rng: rand.New(rand.NewPCG(seed, seed))}
}

type seededSampler struct {
	rng *rand.Rand
}

func (s *seededSampler) One(pool []hymnal.Hymn) hymnal.Hymn {
	return pool[s.rng.IntN(len(pool))]
}

func (s *seededSampler) Sample(pool []hymnal.Hymn, k int) []hymnal.Hymn {
	out := make([]hymnal.Hymn, len(pool))
	copy(out, pool)
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:k]
}
