package coingecko

import (
	"encoding/json"
	"fmt"
)

// SimplePrices maps a coin id to its spot price per currency code, as returned
// by the /simple/price endpoint. A coin absent from the map simply had no data
// this cycle; callers must not treat that as an error.
type SimplePrices map[string]map[string]float64

// Coin is a single record from the /search endpoint.
type Coin struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb"`
}

type searchResponse struct {
	Coins []Coin `json:"coins"`
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp int64
	Price     float64
}

// UnmarshalJSON decodes the [timestamp, price] pair format used by
// /coins/{id}/market_chart.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coingecko: decode price point: %w", err)
	}
	p.Timestamp = int64(pair[0])
	p.Price = pair[1]
	return nil
}

// MarshalJSON restores the upstream pair format so cached series round-trip.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Price})
}

type marketChartResponse struct {
	Prices []PricePoint `json:"prices"`
}
