package quotes

import "github.com/shopspring/decimal"

// HoldingValuation is the itemized value of one holding in every supported
// currency, rounded to two decimal places.
type HoldingValuation struct {
	AssetID  string
	Quantity float64
	Prices   map[string]float64
	Values   map[string]float64
}

// Valuator prices a set of holdings against the spot cache. A holding whose
// asset has no cached quote, or whose quote lacks a currency, contributes zero
// instead of failing.
type Valuator struct {
	spot       *SpotCache
	currencies []string
}

// NewValuator constructs a valuator over the given spot cache and supported
// currency codes.
func NewValuator(spot *SpotCache, currencies []string) *Valuator {
	return &Valuator{spot: spot, currencies: currencies}
}

// Valuate computes per-holding and aggregate values per currency. Totals are
// accumulated at full precision and rounded once at the output boundary;
// per-line values are likewise rounded only for presentation.
func (v *Valuator) Valuate(holdings []Holding) (map[string]float64, []HoldingValuation) {
	totals := make(map[string]float64, len(v.currencies))
	for _, currency := range v.currencies {
		totals[currency] = 0
	}
	if len(holdings) == 0 {
		return totals, []HoldingValuation{}
	}

	snapshot := v.spot.Snapshot()
	items := make([]HoldingValuation, 0, len(holdings))
	raw := make(map[string]float64, len(v.currencies))

	for _, holding := range holdings {
		quote := snapshot[NormalizeID(holding.AssetID)]
		item := HoldingValuation{
			AssetID:  holding.AssetID,
			Quantity: holding.Quantity,
			Prices:   make(map[string]float64, len(v.currencies)),
			Values:   make(map[string]float64, len(v.currencies)),
		}
		for _, currency := range v.currencies {
			price := priceOrZero(quote, currency)
			value := price * holding.Quantity
			raw[currency] += value
			item.Prices[currency] = Round2(price)
			item.Values[currency] = Round2(value)
		}
		items = append(items, item)
	}

	for _, currency := range v.currencies {
		totals[currency] = Round2(raw[currency])
	}
	return totals, items
}

// Currencies returns the supported currency codes in report order.
func (v *Valuator) Currencies() []string {
	return v.currencies
}

func priceOrZero(quote Quote, currency string) float64 {
	if quote == nil {
		return 0
	}
	return quote[currency]
}

// Round2 rounds a monetary amount to two decimal places, half away from zero.
func Round2(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}
