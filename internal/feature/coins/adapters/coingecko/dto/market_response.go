// Package dto defines the wire shapes of the CoinGecko API responses.
package dto

import "github.com/shopspring/decimal"

// MarketCoin は /coins/markets のレスポンス1件分のDTOです。
// 上場廃止直前の銘柄などでは価格や時価総額がnullになることがあるため、
// 欠損しうる数値フィールドはポインタで受けます。
type MarketCoin struct {
	ID                string           `json:"id"`
	Symbol            string           `json:"symbol"`
	Name              string           `json:"name"`
	Image             string           `json:"image"`
	CurrentPrice      *decimal.Decimal `json:"current_price"`
	MarketCap         *decimal.Decimal `json:"market_cap"`
	MarketCapRank     *int             `json:"market_cap_rank"`
	PriceChange24h    decimal.Decimal  `json:"price_change_24h"`
	PriceChangePct24h decimal.Decimal  `json:"price_change_percentage_24h"`
	TotalVolume       decimal.Decimal  `json:"total_volume"`
	High24h           *decimal.Decimal `json:"high_24h"`
	Low24h            *decimal.Decimal `json:"low_24h"`
	CirculatingSupply *decimal.Decimal `json:"circulating_supply"`
	TotalSupply       *decimal.Decimal `json:"total_supply"`
	MaxSupply         *decimal.Decimal `json:"max_supply"`
	LastUpdated       string           `json:"last_updated"`
}

// CoinDetail は /coins/{id} のレスポンスDTOです。marketsレスポンスと違い、
// 数値はネストされたmarket_dataブロックの中に通貨別マップで入ります。
type CoinDetail struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage       []string `json:"homepage"`
		BlockchainSite []string `json:"blockchain_site"`
	} `json:"links"`
	MarketCapRank *int       `json:"market_cap_rank"`
	MarketData    MarketData `json:"market_data"`
	LastUpdated   string     `json:"last_updated"`
}

// MarketData is the nested numeric block of a coin detail response.
type MarketData struct {
	CurrentPrice      map[string]decimal.Decimal `json:"current_price"`
	MarketCap         map[string]decimal.Decimal `json:"market_cap"`
	TotalVolume       map[string]decimal.Decimal `json:"total_volume"`
	High24h           map[string]decimal.Decimal `json:"high_24h"`
	Low24h            map[string]decimal.Decimal `json:"low_24h"`
	PriceChange24h    decimal.Decimal            `json:"price_change_24h"`
	PriceChangePct24h decimal.Decimal            `json:"price_change_percentage_24h"`
	CirculatingSupply *decimal.Decimal           `json:"circulating_supply"`
	TotalSupply       *decimal.Decimal           `json:"total_supply"`
	MaxSupply         *decimal.Decimal           `json:"max_supply"`
}

// MarketChart は /coins/{id}/market_chart のレスポンスDTOです。
// 各要素は [エポックミリ秒, 値] の2要素配列で届きます。
type MarketChart struct {
	Prices [][2]decimal.Decimal `json:"prices"`
}
