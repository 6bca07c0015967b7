// Package entity defines the domain models for the coins feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coin represents one market entry for a cryptocurrency as returned by the
// provider's paginated market listing. It is an immutable snapshot of one
// fetch; filtering produces views over a slice of these, never mutations.
type Coin struct {
	ID     string // Provider asset identifier (e.g., "bitcoin")
	Symbol string // Ticker symbol (e.g., "btc")
	Name   string // Display name (e.g., "Bitcoin")
	Image  string // Logo image URL, delivered as-is

	CurrentPrice *decimal.Decimal // USD price; nil when the provider has no quote
	MarketCap    *decimal.Decimal // USD market capitalization; nil when unknown
	MarketCapRank int             // Positive rank; 0 when absent

	PriceChange24h    decimal.Decimal // Absolute 24h change, signed
	PriceChangePct24h decimal.Decimal // Percentage 24h change, signed
	TotalVolume       decimal.Decimal // 24h trading volume in USD

	High24h *decimal.Decimal
	Low24h  *decimal.Decimal

	CirculatingSupply *decimal.Decimal
	TotalSupply       *decimal.Decimal
	MaxSupply         *decimal.Decimal

	LastUpdated time.Time
}

// CoinDetail is the per-asset detail view: everything in Coin plus
// descriptive text and external links. Fetched independently of the listing.
type CoinDetail struct {
	Coin

	Description    string   // English description, may be empty
	Homepage       []string // Project homepage URLs
	BlockchainSite []string // Block explorer URLs
}

// ChartPoint is one (timestamp, price) sample of a price chart.
type ChartPoint struct {
	// Time is the sample timestamp. The provider delivers epoch milliseconds.
	Time time.Time
	// Price is the USD price at that instant.
	Price decimal.Decimal
}

// SortedByTime reports whether points are ordered by timestamp ascending.
// A chart series must satisfy this before it is handed to a renderer.
func SortedByTime(points []ChartPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			return false
		}
	}
	return true
}
