package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	"crypto_dashboard/internal/feature/coins/domain/entity"
)

// Range is an optional inclusive numeric range. A nil bound is inactive.
// Min > Max is not rejected; both bounds apply independently, so an inverted
// range simply matches nothing.
type Range struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// active reports whether at least one bound is set.
func (r Range) active() bool {
	return r.Min != nil || r.Max != nil
}

// contains reports whether v satisfies the active bounds. A nil value can
// never satisfy a numeric inequality, so it fails any active range — but an
// inactive range matches everything, nil included.
func (r Range) contains(v *decimal.Decimal) bool {
	if !r.active() {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// FilterOptions narrows one fetched market page. Sorting is not part of the
// pipeline: global ordering is delegated to the provider via SortSpec, so
// filtering only ever removes entries and never reorders them.
type FilterOptions struct {
	Sort           SortSpec // Carried with the criteria; consumed by the fetch, not by ApplyFilters
	PriceRange     Range
	MarketCapRange Range
}

// ApplyFilters returns the visible subset of coins for the given search query
// and criteria. Pure and order-preserving; the input slice is never mutated.
//
// Pipeline, fixed order:
//  1. case-insensitive substring match of query against name or symbol
//  2. price lower bound
//  3. price upper bound
//  4. market cap lower bound
//  5. market cap upper bound
//
// The query is expected to be trimmed and debounced by the caller.
func ApplyFilters(coins []entity.Coin, query string, opts FilterOptions) []entity.Coin {
	out := make([]entity.Coin, 0, len(coins))
	q := strings.ToLower(query)
	for _, c := range coins {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Symbol), q) {
			continue
		}
		if !opts.PriceRange.contains(c.CurrentPrice) {
			continue
		}
		if !opts.MarketCapRange.contains(c.MarketCap) {
			continue
		}
		out = append(out, c)
	}
	return out
}
