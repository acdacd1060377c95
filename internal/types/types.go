package types

import "coinfolio-api/pkg/coingecko"

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResp struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type AddHoldingReq struct {
	CoinId   string  `json:"coinId"`
	Quantity float64 `json:"quantity"`
	Logo     string  `json:"logo,optional"`
}

type UpdateHoldingReq struct {
	CoinId   string  `json:"coinId"`
	Quantity float64 `json:"quantity"`
}

type DeleteHoldingReq struct {
	CoinId string `path:"coinId"`
}

type HoldingResp struct {
	CoinId   string  `json:"coinId"`
	Quantity float64 `json:"quantity"`
	Logo     string  `json:"logo,omitempty"`
}

type HoldingValuationItem struct {
	CoinId   string             `json:"coinId"`
	Quantity float64            `json:"quantity"`
	Logo     string             `json:"logo,omitempty"`
	Prices   map[string]float64 `json:"prices"`
	Values   map[string]float64 `json:"values"`
}

type PortfolioResp struct {
	Email    string                 `json:"email"`
	Name     string                 `json:"name"`
	Totals   map[string]float64     `json:"totals"`
	Holdings []HoldingValuationItem `json:"holdings"`
}

type SearchReq struct {
	Query string `form:"query,optional"`
}

type SearchCoin struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb"`
}

type SearchResp struct {
	Coins []SearchCoin `json:"coins"`
}

type HistoryReq struct {
	CoinId   string `path:"coinId"`
	Days     string `form:"days,default=7"`
	Currency string `form:"currency,default=usd"`
}

type HistoryResp struct {
	Prices []coingecko.PricePoint `json:"prices"`
}
