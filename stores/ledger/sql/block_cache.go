package sql

import (
	"sync/atomic"
	"time"

	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/jellydator/ttlcache/v3"
)

// blockCache caches block lookups by height. DeleteAll bumps a generation counter so a
// lookup that started before a rollback cannot put its stale result back afterwards.
type blockCache struct {
	ttlCache   *ttlcache.Cache[uint32, *model.BlockRecord]
	generation atomic.Uint64
	stopped    atomic.Bool
}

func newBlockCache(ttl time.Duration) *blockCache {
	bc := &blockCache{
		ttlCache: ttlcache.New[uint32, *model.BlockRecord](
			ttlcache.WithTTL[uint32, *model.BlockRecord](ttl),
			ttlcache.WithDisableTouchOnHit[uint32, *model.BlockRecord](),
		),
	}

	go bc.ttlCache.Start()

	return bc
}

type cacheOperation struct {
	cache      *blockCache
	height     uint32
	generation uint64
}

// begin captures the current generation for a Get, query, Set sequence.
func (bc *blockCache) begin(height uint32) *cacheOperation {
	return &cacheOperation{
		cache:      bc,
		height:     height,
		generation: bc.generation.Load(),
	}
}

func (op *cacheOperation) get() *model.BlockRecord {
	if item := op.cache.ttlCache.Get(op.height); item != nil {
		return item.Value()
	}

	return nil
}

func (op *cacheOperation) set(block *model.BlockRecord) {
	if op.cache.generation.Load() != op.generation {
		return
	}

	op.cache.ttlCache.Set(op.height, block, ttlcache.DefaultTTL)
}

func (bc *blockCache) deleteAll() {
	bc.ttlCache.DeleteAll()
	bc.generation.Add(1)
}

func (bc *blockCache) stop() {
	if bc.stopped.CompareAndSwap(false, true) {
		bc.ttlCache.Stop()
	}
}
