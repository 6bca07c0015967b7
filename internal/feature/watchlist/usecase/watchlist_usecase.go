// Package usecase implements the business logic for watchlist operations.
package usecase

import (
	"context"

	coinsentity "crypto_dashboard/internal/feature/coins/domain/entity"
	coinsusecase "crypto_dashboard/internal/feature/coins/usecase"
	"crypto_dashboard/internal/feature/watchlist/store"
)

// resolvePerPage is how deep into the market listing watched ids are resolved.
// One top-250 page; an id that has fallen out of the provider's top 250 stays
// unresolved until a broader query finds it.
const resolvePerPage = 250

// MarketLister is the slice of the market repository this usecase needs.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketLister interface {
	ListCoins(ctx context.Context, page, perPage int, sort coinsusecase.SortSpec) ([]coinsentity.Coin, error)
}

// WatchlistUsecase provides business logic for watchlist operations.
type WatchlistUsecase struct {
	store  *store.WatchlistStore
	market MarketLister
}

// NewWatchlistUsecase creates a new WatchlistUsecase.
func NewWatchlistUsecase(s *store.WatchlistStore, m MarketLister) *WatchlistUsecase {
	return &WatchlistUsecase{store: s, market: m}
}

// IDs returns the watched ids in insertion order.
func (u *WatchlistUsecase) IDs() []string {
	return u.store.IDs()
}

// IsWatched reports membership for one id.
func (u *WatchlistUsecase) IsWatched(id string) bool {
	return u.store.IsWatched(id)
}

// Add puts id on the watchlist.
func (u *WatchlistUsecase) Add(ctx context.Context, id string) {
	u.store.Add(ctx, id)
}

// Remove takes id off the watchlist.
func (u *WatchlistUsecase) Remove(ctx context.Context, id string) {
	u.store.Remove(ctx, id)
}

// Toggle flips membership for id and reports the new state.
func (u *WatchlistUsecase) Toggle(ctx context.Context, id string) bool {
	u.store.Toggle(ctx, id)
	return u.store.IsWatched(id)
}

// Clear empties the watchlist.
func (u *WatchlistUsecase) Clear(ctx context.Context) {
	u.store.Clear(ctx)
}

// ResolveCoins materializes the watched ids into market entries by fetching
// the top market page and keeping the watched members, in the page's own
// (market cap descending) order. Ids that the page does not contain come back
// in missing so the view can say so instead of dropping them silently.
func (u *WatchlistUsecase) ResolveCoins(ctx context.Context) (coins []coinsentity.Coin, missing []string, err error) {
	ids := u.store.IDs()
	if len(ids) == 0 {
		return nil, nil, nil
	}

	page, err := u.market.ListCoins(ctx, 1, resolvePerPage, coinsusecase.DefaultSort)
	if err != nil {
		return nil, nil, err
	}

	watched := make(map[string]bool, len(ids))
	for _, id := range ids {
		watched[id] = false
	}

	coins = make([]coinsentity.Coin, 0, len(ids))
	for _, c := range page {
		if _, ok := watched[c.ID]; ok {
			watched[c.ID] = true
			coins = append(coins, c)
		}
	}

	for _, id := range ids {
		if !watched[id] {
			missing = append(missing, id)
		}
	}
	return coins, missing, nil
}
