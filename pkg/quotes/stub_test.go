package quotes

import (
	"context"
	"sync"

	"coinfolio-api/pkg/coingecko"
)

// stubSource is an in-memory Source with call counters, shared by the tests
// in this package.
type stubSource struct {
	mu sync.Mutex

	prices    coingecko.SimplePrices
	pricesErr error
	chart     []coingecko.PricePoint
	chartErr  error
	coins     []coingecko.Coin
	searchErr error

	priceCalls  int
	chartCalls  int
	searchCalls int
	lastIDs     []string
}

func (s *stubSource) SimplePrices(ctx context.Context, ids, currencies []string) (coingecko.SimplePrices, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceCalls++
	s.lastIDs = append([]string(nil), ids...)
	if s.pricesErr != nil {
		return nil, s.pricesErr
	}
	return s.prices, nil
}

func (s *stubSource) MarketChart(ctx context.Context, id, currency, days string) ([]coingecko.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chartCalls++
	if s.chartErr != nil {
		return nil, s.chartErr
	}
	return s.chart, nil
}

func (s *stubSource) Search(ctx context.Context, query string) ([]coingecko.Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.coins, nil
}

func (s *stubSource) calls() (prices, charts, searches int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priceCalls, s.chartCalls, s.searchCalls
}

// stubHoldings returns a fixed distinct asset id set.
type stubHoldings struct {
	ids []string
	err error

	mu    sync.Mutex
	calls int
}

func (s *stubHoldings) DistinctAssetIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}
