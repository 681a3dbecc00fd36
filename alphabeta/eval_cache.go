package alphabeta

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/board"
)

const (
	cacheEntrySize = 24 // bytes in a cacheEntry
	minCachePower  = 16
	maxCachePower  = 28
)

type cacheEntry struct {
	key   uint64
	value float64
	used  bool
}

// EvalCache remembers leaf evaluations by board fingerprint. A position
// reached by different move orders is only evaluated once. It is safe
// for concurrent use.
type EvalCache struct {
	sync.Mutex
	table    []cacheEntry
	sizeMask uint64

	lookups atomic.Uint64
	hits    atomic.Uint64
}

// NewEvalCache sizes a table to use about fractionOfMemory of the
// machine's memory, rounded down to a power of two and clamped to a
// sensible range.
func NewEvalCache(fractionOfMemory float64) *EvalCache {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * float64(totalMem) / cacheEntrySize
	power := minCachePower
	if desiredNElems > 1 {
		power = int(math.Log2(desiredNElems))
	}
	power = min(max(power, minCachePower), maxCachePower)
	c := newEvalCacheWithPower(power)
	log.Info().Int("num-elems", len(c.table)).
		Int("estimated-total-memory-bytes", len(c.table)*cacheEntrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("eval-cache-size")
	return c
}

func newEvalCacheWithPower(power int) *EvalCache {
	n := 1 << power
	return &EvalCache{table: make([]cacheEntry, n), sizeMask: uint64(n - 1)}
}

func (c *EvalCache) lookup(key uint64) (float64, bool) {
	c.lookups.Add(1)
	c.Lock()
	e := c.table[key&c.sizeMask]
	c.Unlock()
	if !e.used || e.key != key {
		return 0, false
	}
	c.hits.Add(1)
	return e.value, true
}

func (c *EvalCache) store(key uint64, value float64) {
	c.Lock()
	// Always replace.
	c.table[key&c.sizeMask] = cacheEntry{key: key, value: value, used: true}
	c.Unlock()
}

// Stats returns lookups and hits since the cache was made or reset.
func (c *EvalCache) Stats() (lookups, hits uint64) {
	return c.lookups.Load(), c.hits.Load()
}

func (c *EvalCache) Reset() {
	c.Lock()
	clear(c.table)
	c.Unlock()
	c.lookups.Store(0)
	c.hits.Store(0)
}

// evaluate scores a leaf, going through the cache if there is one.
func (s *Solver) evaluate(b *board.Board) float64 {
	if s.cache == nil {
		return s.evaluator(b)
	}
	key := b.Fingerprint()
	if v, ok := s.cache.lookup(key); ok {
		return v
	}
	v := s.evaluator(b)
	s.cache.store(key, v)
	return v
}
