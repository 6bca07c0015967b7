// Package dto defines data transfer objects for the coins HTTP API.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"crypto_dashboard/internal/feature/coins/domain/entity"
)

// CoinItem はマーケット一覧1件分のレスポンスDTOです。
// プロバイダが値を持たないフィールドはnullで返します。
type CoinItem struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Image             string   `json:"image"`
	CurrentPrice      *float64 `json:"current_price"`
	MarketCap         *float64 `json:"market_cap"`
	MarketCapRank     *int     `json:"market_cap_rank"`
	PriceChange24h    float64  `json:"price_change_24h"`
	PriceChangePct24h float64  `json:"price_change_percentage_24h"`
	TotalVolume       float64  `json:"total_volume"`
	High24h           *float64 `json:"high_24h"`
	Low24h            *float64 `json:"low_24h"`
	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
	LastUpdated       string   `json:"last_updated,omitempty"`
}

// CoinDetailResponse は銘柄詳細のレスポンスDTOです。
type CoinDetailResponse struct {
	CoinItem

	Description    string   `json:"description"`
	Homepage       []string `json:"homepage"`
	BlockchainSite []string `json:"blockchain_site"`
}

// ChartPoint は価格チャートの1サンプルです。timeはエポックミリ秒です。
type ChartPoint struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// FromCoin はドメインエンティティをレスポンスDTOに変換します。
// 金額はワイヤ上ではJSON数値（float64）で返します。
func FromCoin(x entity.Coin) CoinItem {
	item := CoinItem{
		ID:                x.ID,
		Symbol:            x.Symbol,
		Name:              x.Name,
		Image:             x.Image,
		CurrentPrice:      toFloat(x.CurrentPrice),
		MarketCap:         toFloat(x.MarketCap),
		PriceChange24h:    x.PriceChange24h.InexactFloat64(),
		PriceChangePct24h: x.PriceChangePct24h.InexactFloat64(),
		TotalVolume:       x.TotalVolume.InexactFloat64(),
		High24h:           toFloat(x.High24h),
		Low24h:            toFloat(x.Low24h),
		CirculatingSupply: toFloat(x.CirculatingSupply),
		TotalSupply:       toFloat(x.TotalSupply),
		MaxSupply:         toFloat(x.MaxSupply),
	}
	if x.MarketCapRank > 0 {
		rank := x.MarketCapRank
		item.MarketCapRank = &rank
	}
	if !x.LastUpdated.IsZero() {
		item.LastUpdated = x.LastUpdated.UTC().Format(time.RFC3339)
	}
	return item
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
