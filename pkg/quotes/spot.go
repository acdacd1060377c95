package quotes

import "sync"

// SpotCache holds the latest known quote for every tracked asset. Entries are
// written only by the refresher and never expire individually; staleness is
// bounded by the refresh schedule. Quote values are replaced wholesale and
// never mutated in place, so readers holding a snapshot see consistent prices
// per asset.
type SpotCache struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewSpotCache constructs an empty spot price cache.
func NewSpotCache() *SpotCache {
	return &SpotCache{quotes: make(map[string]Quote)}
}

// Get returns the latest quote for an asset id.
func (c *SpotCache) Get(id string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quote, ok := c.quotes[NormalizeID(id)]
	return quote, ok
}

// Snapshot returns a copy of the current mapping. The Quote values are shared
// with the cache; they are immutable by contract.
func (c *SpotCache) Snapshot() map[string]Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]Quote, len(c.quotes))
	for id, quote := range c.quotes {
		snapshot[id] = quote
	}
	return snapshot
}

// Merge overlays updates onto the cache per key. Assets absent from updates
// keep their last known quote, so a partial upstream response never erases a
// previously good price.
func (c *SpotCache) Merge(updates map[string]Quote) {
	if len(updates) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, quote := range updates {
		normalized := NormalizeID(id)
		if normalized == "" || quote == nil {
			continue
		}
		copied := make(Quote, len(quote))
		for currency, price := range quote {
			copied[NormalizeID(currency)] = price
		}
		c.quotes[normalized] = copied
	}
}

// Len reports the number of cached assets.
func (c *SpotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
