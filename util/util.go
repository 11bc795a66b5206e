package util

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the seed the generator was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	return r.rand.Intn(n)
}

// Shuffle pseudo-randomizes the order of n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.rand.Shuffle(n, swap)
}

// ShuffleSlice shuffles s in place.
func ShuffleSlice[T any](r *RNG, s []T) {
	r.rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// EpochSeed derives the seed for one training epoch. A negative epoch
// means "no epoch known" and yields the base seed unchanged.
func EpochSeed(base int64, epoch int) int64 {
	if epoch < 0 {
		return base
	}
	return base + int64(epoch)
}
