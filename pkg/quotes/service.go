package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"coinfolio-api/pkg/coingecko"
)

// Service is the lazy, on-demand side of the subsystem: historical series with
// cache-or-fetch semantics and asset search. Upstream failures never escape;
// callers always get a (possibly degraded or empty) result.
type Service struct {
	source  Source
	series  *SeriesCache
	timeout time.Duration
}

// NewService wires the history/search service over a quote source and a
// series cache.
func NewService(source Source, series *SeriesCache, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Service{source: source, series: series, timeout: timeout}
}

// History returns the price series for one asset over a window of days in one
// currency. Fresh cache entries are served directly; otherwise a refetch is
// attempted. On refetch failure a stale entry is returned if one exists, else
// an empty series.
func (s *Service) History(ctx context.Context, id, days, currency string) []coingecko.PricePoint {
	key := NewSeriesKey(id, days, currency)
	entry, fresh, ok := s.series.Get(key)
	if ok && fresh {
		return entry.Points
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	points, err := s.source.MarketChart(fetchCtx, key.AssetID, key.Currency, key.Days)
	if err == nil {
		s.series.Put(key, points)
		return points
	}

	logx.WithContext(ctx).Errorf("quotes: history %s/%s/%s days fetch failed: %v", key.AssetID, key.Currency, key.Days, err)
	if ok {
		return entry.Points
	}
	return []coingecko.PricePoint{}
}

// Search runs a fuzzy asset lookup. An empty query short-circuits; an upstream
// failure degrades to an empty list.
func (s *Service) Search(ctx context.Context, query string) []coingecko.Coin {
	if strings.TrimSpace(query) == "" {
		return []coingecko.Coin{}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	coins, err := s.source.Search(fetchCtx, query)
	if err != nil {
		logx.WithContext(ctx).Errorf("quotes: search %q failed: %v", query, err)
		return []coingecko.Coin{}
	}
	return coins
}

// LogoURL resolves the thumbnail URL for an exact asset id via search. Returns
// empty when the id has no exact match or the lookup fails.
func (s *Service) LogoURL(ctx context.Context, id string) string {
	normalized := NormalizeID(id)
	if normalized == "" {
		return ""
	}
	for _, coin := range s.Search(ctx, normalized) {
		if strings.EqualFold(coin.ID, normalized) {
			return coin.Thumb
		}
	}
	return ""
}
