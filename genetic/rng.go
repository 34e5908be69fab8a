package genetic

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

// defaultRNGSeed replaces a zero seed so the default run is reproducible.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic source. seed==0 selects defaultRNGSeed.
// math/rand.Rand is not goroutine-safe: the solver only draws from it while
// breeding, never inside fitness evaluation.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// randomDNA returns n bits, each set with probability density.
func randomDNA(rng *rand.Rand, n int, density float64) *bitset.BitSet {
	dna := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		if rng.Float64() < density {
			dna.Set(uint(i))
		}
	}

	return dna
}

// flipCluster toggles the run [from, from+size) clipped to n bits.
func flipCluster(dna *bitset.BitSet, n, from, size int) {
	for i := from; i < from+size && i < n; i++ {
		dna.Flip(uint(i))
	}
}
