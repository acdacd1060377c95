// Package quotes implements the in-process price caching and valuation core:
// a spot price cache fed by a scheduled refresher, a TTL-governed historical
// series cache with stale fallback, and a portfolio valuator. All state is
// in-memory and lives for the process lifetime.
package quotes

import (
	"context"
	"strings"

	"coinfolio-api/pkg/coingecko"
)

// Quote maps a currency code to a spot price for one asset.
type Quote map[string]float64

// Holding pairs a normalized asset id with a quantity owned.
type Holding struct {
	AssetID  string
	Quantity float64
}

// Source is the upstream quote feed consumed by the refresher and the
// history/search paths. Implemented by *coingecko.Client.
type Source interface {
	SimplePrices(ctx context.Context, ids, currencies []string) (coingecko.SimplePrices, error)
	MarketChart(ctx context.Context, id, currency, days string) ([]coingecko.PricePoint, error)
	Search(ctx context.Context, query string) ([]coingecko.Coin, error)
}

// HoldingsIndex supplies the distinct set of asset ids currently held by any
// user. Backed by the persistence layer.
type HoldingsIndex interface {
	DistinctAssetIDs(ctx context.Context) ([]string, error)
}

// NormalizeID canonicalizes an asset id: trimmed and lower-cased. Applied on
// every write path so the caches share one identity key.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
