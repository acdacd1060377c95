package quotes

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"coinfolio-api/pkg/coingecko"
)

const (
	defaultRefreshInterval = 20 * time.Minute
	defaultStartupDelay    = 5 * time.Second
	defaultThrottleWindow  = 2 * time.Minute
	defaultRequestTimeout  = 8 * time.Second
)

// RefresherConfig tunes the refresh schedule and upstream budget. Zero fields
// fall back to defaults.
type RefresherConfig struct {
	Currencies     []string
	Interval       time.Duration
	StartupDelay   time.Duration
	ThrottleWindow time.Duration
	RequestTimeout time.Duration
}

// Refresher owns all spot price contact with the quote source. A scheduled
// loop bulk-refreshes every tracked asset; an on-demand path fetches a single
// newly added asset within a cooldown window. Every upstream failure is logged
// and swallowed here; the previous cache contents stay authoritative.
type Refresher struct {
	source     Source
	holdings   HoldingsIndex
	spot       *SpotCache
	currencies []string
	interval   time.Duration
	delay      time.Duration
	timeout    time.Duration
	throttle   *refreshThrottle
}

// NewRefresher wires a refresher over the given source, holdings index and
// spot cache.
func NewRefresher(source Source, holdings HoldingsIndex, spot *SpotCache, cfg RefresherConfig) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultRefreshInterval
	}
	if cfg.StartupDelay <= 0 {
		cfg.StartupDelay = defaultStartupDelay
	}
	if cfg.ThrottleWindow <= 0 {
		cfg.ThrottleWindow = defaultThrottleWindow
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = []string{"brl", "usd", "eur"}
	}
	return &Refresher{
		source:     source,
		holdings:   holdings,
		spot:       spot,
		currencies: cfg.Currencies,
		interval:   cfg.Interval,
		delay:      cfg.StartupDelay,
		timeout:    cfg.RequestTimeout,
		throttle:   newRefreshThrottle(cfg.ThrottleWindow),
	}
}

// Start launches the scheduled bulk refresh loop. The first cycle runs after a
// short startup delay so it does not race process warm-up; afterwards the loop
// fires on a fixed ticker until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	threading.GoSafe(func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.delay):
		}
		r.RefreshAll(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logx.Info("quotes: refresher stopped")
				return
			case <-ticker.C:
				r.RefreshAll(ctx)
			}
		}
	})
}

// RefreshAll bulk-refreshes every asset currently held by any user with one
// batch request. Fire and forget: on any failure the cycle is abandoned and
// the previous cache contents remain.
func (r *Refresher) RefreshAll(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	ids, err := r.holdings.DistinctAssetIDs(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("quotes: list tracked assets: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	prices, err := r.source.SimplePrices(ctx, ids, r.currencies)
	if err != nil {
		logx.WithContext(ctx).Errorf("quotes: bulk refresh failed: %v", err)
		return
	}
	if len(prices) == 0 {
		return
	}
	r.spot.Merge(toQuotes(prices))
	logx.WithContext(ctx).Infof("quotes: bulk refresh merged %d of %d assets", len(prices), len(ids))
}

// RefreshAsset fetches the price of a single asset on demand, typically when
// it is first added to a holding. Suppressed when the asset already has a
// known price and was refreshed within the cooldown window. The throttle
// timestamp is recorded regardless of outcome.
func (r *Refresher) RefreshAsset(parent context.Context, rawID string) {
	id := NormalizeID(rawID)
	if id == "" {
		return
	}
	if _, known := r.spot.Get(id); known && r.throttle.inCooldown(id) {
		return
	}

	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	prices, err := r.source.SimplePrices(ctx, []string{id}, r.currencies)
	r.throttle.mark(id)
	if err != nil {
		logx.WithContext(ctx).Errorf("quotes: on-demand refresh %s failed: %v", id, err)
		return
	}
	if len(prices) == 0 {
		return
	}
	r.spot.Merge(toQuotes(prices))
}

func toQuotes(prices coingecko.SimplePrices) map[string]Quote {
	quotes := make(map[string]Quote, len(prices))
	for id, perCurrency := range prices {
		quotes[id] = Quote(perCurrency)
	}
	return quotes
}
