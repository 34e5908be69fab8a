package genetic

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

const cacheShards = 32

// fitnessCache memoises fitness by bit pattern. Keys are spread over
// independently locked shards by their xxhash so concurrent evaluations
// rarely contend.
type fitnessCache struct {
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu sync.RWMutex
	m  map[string]float64
}

func newFitnessCache() *fitnessCache {
	c := &fitnessCache{}
	for i := range c.shards {
		c.shards[i].m = make(map[string]float64)
	}

	return c
}

// dnaKey encodes the words of dna; equal bit patterns of equal length give
// equal keys.
func dnaKey(dna *bitset.BitSet) string {
	words := dna.Bytes()
	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[8*i:], w)
	}

	return string(buf)
}

func (c *fitnessCache) shard(key string) *cacheShard {
	return &c.shards[xxhash.Sum64String(key)%cacheShards]
}

func (c *fitnessCache) get(key string) (float64, bool) {
	s := c.shard(key)
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()

	return v, ok
}

func (c *fitnessCache) put(key string, v float64) {
	s := c.shard(key)
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
}

func (c *fitnessCache) len() int {
	n := 0
	for i := range c.shards {
		c.shards[i].mu.RLock()
		n += len(c.shards[i].m)
		c.shards[i].mu.RUnlock()
	}

	return n
}
