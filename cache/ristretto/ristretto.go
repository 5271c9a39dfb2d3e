package ristretto

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/quillhq/quill/cache"
)

type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.cache.Set(key, value, cost)
}

func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return rc.cache.SetWithTTL(key, value, cost, ttl)
}

func (rc *Cache[V]) Del(key string) {
	rc.cache.Del(key)
}

// New creates a string-keyed ristretto cache sized by level: "small",
// "medium", "large".
func New[V any](size string) (cache.Cache[string, V], error) {
	var numCounters, maxCost int64
	switch size {
	case "small":
		numCounters, maxCost = 1e4, 1<<20 // ~1k items, 1MB
	case "medium":
		numCounters, maxCost = 1e6, 1<<28 // ~100k items, 256MB
	case "large":
		numCounters, maxCost = 1e7, 1<<30 // ~1M items, 1GB
	default:
		return nil, fmt.Errorf("unknown cache size %q", size)
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{cache: c}, nil
}
