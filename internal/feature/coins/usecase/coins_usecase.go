// Package usecase implements the business logic for coin market data
// operations: paging defaults, the local sort vocabulary, and the
// days-to-interval pairing for chart queries.
package usecase

import (
	"context"
	"fmt"

	"crypto_dashboard/internal/feature/coins/domain/entity"
)

const (
	// DefaultPage is the first market listing page.
	DefaultPage = 1
	// DefaultPerPage is the default market listing page size.
	DefaultPerPage = 50
	// MaxPerPage is the largest page size the provider accepts.
	MaxPerPage = 250
	// DefaultChartDays is the chart range used when the caller gives none.
	DefaultChartDays = 7
)

// SortKey is the local sort vocabulary. It is deliberately not the provider's
// order token set; the gateway owns that translation.
type SortKey string

const (
	SortMarketCap SortKey = "market_cap"
	SortPrice     SortKey = "price"
	SortVolume    SortKey = "volume"
	SortChange24h SortKey = "price_change_24h"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// SortSpec combines a sort key with a direction.
type SortSpec struct {
	Key   SortKey
	Order SortOrder
}

// DefaultSort is the listing order used when the caller gives none.
var DefaultSort = SortSpec{Key: SortMarketCap, Order: OrderDesc}

// Valid reports whether both key and order belong to the local vocabulary.
func (s SortSpec) Valid() bool {
	switch s.Key {
	case SortMarketCap, SortPrice, SortVolume, SortChange24h:
	default:
		return false
	}
	return s.Order == OrderAsc || s.Order == OrderDesc
}

// chartIntervals pairs a chart range in days with the provider granularity
// token that range requires. Mismatched pairings are rejected upstream, so
// the pairing lives in exactly one place.
var chartIntervals = map[int]string{
	1:  "hourly",
	7:  "hourly",
	30: "daily",
	90: "daily",
}

// MarketRepository abstracts the market data source (the provider gateway,
// possibly wrapped by a cache).
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	// ListCoins returns one page of market entries in the requested order.
	ListCoins(ctx context.Context, page, perPage int, sort SortSpec) ([]entity.Coin, error)
	// GetCoinDetail returns the detail view for one asset.
	GetCoinDetail(ctx context.Context, id string) (*entity.CoinDetail, error)
	// GetMarketChart returns the price series for the given range and
	// granularity token.
	GetMarketChart(ctx context.Context, id string, days int, interval string) ([]entity.ChartPoint, error)
}

// CoinsUsecase provides business logic for market data operations.
type CoinsUsecase struct {
	market MarketRepository
}

// NewCoinsUsecase creates a new CoinsUsecase with the given repository.
func NewCoinsUsecase(m MarketRepository) *CoinsUsecase {
	return &CoinsUsecase{market: m}
}

// ListCoins fetches one market page, applying defaults for out-of-range
// paging parameters and an invalid sort spec.
func (u *CoinsUsecase) ListCoins(ctx context.Context, page, perPage int, sort SortSpec) ([]entity.Coin, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	if !sort.Valid() {
		sort = DefaultSort
	}
	return u.market.ListCoins(ctx, page, perPage, sort)
}

// GetCoinDetail returns the detail view for one asset. A provider 404
// surfaces as domain.ErrNotFound from the gateway and passes through.
func (u *CoinsUsecase) GetCoinDetail(ctx context.Context, id string) (*entity.CoinDetail, error) {
	return u.market.GetCoinDetail(ctx, id)
}

// GetMarketChart fetches the price series for one of the supported ranges,
// choosing the granularity the provider requires for that range. An
// unsupported range falls back to the default rather than guessing a pairing
// the provider would reject.
func (u *CoinsUsecase) GetMarketChart(ctx context.Context, id string, days int) ([]entity.ChartPoint, error) {
	interval, ok := chartIntervals[days]
	if !ok {
		days = DefaultChartDays
		interval = chartIntervals[days]
	}
	points, err := u.market.GetMarketChart(ctx, id, days, interval)
	if err != nil {
		return nil, err
	}
	if !entity.SortedByTime(points) {
		return nil, fmt.Errorf("chart series for %s is not ordered by time", id)
	}
	return points, nil
}
