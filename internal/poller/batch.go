package poller

import (
	"math/rand/v2"
	"sync"
)

// Batch is an ordered group of targets submitted together within a round.
type Batch []Target

// BatchTargets shuffles a copy of targets with rng and splits it into
// batches of at most size entries. The last batch may be smaller.
//
// The input slice is never reordered. An empty input yields no batches.
// size must be positive.
func BatchTargets(targets []Target, size int, rng *rand.Rand) []Batch {
	if len(targets) == 0 {
		return nil
	}
	if size <= 0 {
		panic("poller: batch size must be positive")
	}

	shuffled := make([]Target, len(targets))
	copy(shuffled, targets)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	batches := make([]Batch, 0, (len(shuffled)+size-1)/size)
	for start := 0; start < len(shuffled); start += size {
		end := min(start+size, len(shuffled))
		batches = append(batches, Batch(shuffled[start:end:end]))
	}
	return batches
}

// Shuffler supplies the random source for each round's batching.
//
// A seeded Shuffler draws every round from one deterministic source, so a
// run is reproducible. An unseeded Shuffler reseeds from the runtime's
// entropy source at each round.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns an entropy-backed [Shuffler].
func NewShuffler() *Shuffler {
	return &Shuffler{}
}

// NewSeededShuffler returns a deterministic [Shuffler].
func NewSeededShuffler(seed uint64) *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Batches shuffles and batches targets for one round.
func (s *Shuffler) Batches(targets []Target, size int) []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	rng := s.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return BatchTargets(targets, size, rng)
}
