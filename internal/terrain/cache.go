package terrain

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cellKey struct {
	lat, lng int64
}

// CachedElevation memoises lookups of a slower ElevationSource on a grid
// of Resolution degrees. Entries expire after TTL so a refreshed DEM is
// picked up eventually. Positions without coverage are never cached.
type CachedElevation struct {
	source     ElevationSource
	resolution float64
	cache      *expirable.LRU[cellKey, float64]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedElevation wraps source. size <= 0 defaults to 4096 cells,
// resolution <= 0 to 1e-5 degrees (about a metre).
func NewCachedElevation(source ElevationSource, size int, resolution float64, ttl time.Duration) *CachedElevation {
	if size <= 0 {
		size = 4096
	}
	if resolution <= 0 {
		resolution = 1e-5
	}
	return &CachedElevation{
		source:     source,
		resolution: resolution,
		cache:      expirable.NewLRU[cellKey, float64](size, nil, ttl),
	}
}

func (c *CachedElevation) key(lat, lng float64) cellKey {
	return cellKey{
		lat: int64(math.Floor(lat / c.resolution)),
		lng: int64(math.Floor(lng / c.resolution)),
	}
}

func (c *CachedElevation) ElevationAt(lat, lng float64) (float64, bool) {
	k := c.key(lat, lng)
	if elev, ok := c.cache.Get(k); ok {
		c.hits.Add(1)
		return elev, true
	}
	c.misses.Add(1)
	elev, ok := c.source.ElevationAt(lat, lng)
	if !ok {
		return 0, false
	}
	c.cache.Add(k, elev)
	return elev, true
}

// Stats returns cache hits and misses so far.
func (c *CachedElevation) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops every cached cell.
func (c *CachedElevation) Purge() {
	c.cache.Purge()
}
