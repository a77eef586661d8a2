package embedcache

import (
	"time"

	"github.com/AMV0027/gcn-final/internal/ai"
)

type Options struct {
	LRUSize  int
	LRUTTL   time.Duration
	Redis    kvStore
	RedisTTL time.Duration
	DB       dbStore
}

// Wrap layers the configured tiers around e. Lookups go lru, then redis,
// then postgres, then the provider; a miss fills every tier it passed.
func Wrap(e ai.IEmbedder, opts Options) ai.IEmbedder {
	if opts.DB != nil {
		e = WrapDBCacheToEmbedder(e, opts.DB)
	}
	if opts.Redis != nil {
		e = WrapRedisCacheToEmbedder(e, opts.Redis, opts.RedisTTL)
	}
	return WrapLruCacheToEmbedder(e, opts.LRUSize, opts.LRUTTL)
}
