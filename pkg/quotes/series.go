package quotes

import (
	"strings"
	"sync"
	"time"

	"coinfolio-api/pkg/coingecko"
)

// SeriesKey identifies one cached historical series.
type SeriesKey struct {
	AssetID  string
	Days     string
	Currency string
}

// NewSeriesKey builds a normalized cache key.
func NewSeriesKey(id, days, currency string) SeriesKey {
	return SeriesKey{
		AssetID:  NormalizeID(id),
		Days:     strings.TrimSpace(days),
		Currency: NormalizeID(currency),
	}
}

// SeriesEntry is a fetched price series plus its fetch timestamp.
type SeriesEntry struct {
	Points    []coingecko.PricePoint
	FetchedAt time.Time
}

// seriesExpired reports whether an entry fetched at fetchedAt has outlived ttl.
func seriesExpired(fetchedAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(fetchedAt) > ttl
}

// SeriesCache stores historical series per (asset, window, currency) key.
// Expired entries are retained: they read as not fresh but their payload is
// still returned as a degraded fallback when a refetch fails.
type SeriesCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[SeriesKey]SeriesEntry
	now     func() time.Time
}

// NewSeriesCache constructs a series cache with the given TTL.
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	return &SeriesCache{
		ttl:     ttl,
		entries: make(map[SeriesKey]SeriesEntry),
		now:     time.Now,
	}
}

// Get returns the stored entry, whether it is within TTL, and whether any
// entry exists at all.
func (c *SeriesCache) Get(key SeriesKey) (SeriesEntry, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return SeriesEntry{}, false, false
	}
	return entry, !seriesExpired(entry.FetchedAt, c.ttl, c.now()), true
}

// Put stores a freshly fetched series, replacing any prior entry wholesale.
func (c *SeriesCache) Put(key SeriesKey, points []coingecko.PricePoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = SeriesEntry{Points: points, FetchedAt: c.now()}
}
