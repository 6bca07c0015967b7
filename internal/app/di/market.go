// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"crypto_dashboard/internal/feature/coins/adapters/coingecko"
	infrahttp "crypto_dashboard/internal/platform/http"
	"crypto_dashboard/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured CoinGeckoMarket with HTTP client.
// ratePerMinute > 0 puts a client-side throttle in front of the provider,
// for staying inside the free-tier limits.
func NewMarket(ratePerMinute int) *coingecko.CoinGeckoMarket {
	cfg := coingecko.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)

	var limiter ratelimiter.RateLimiterInterface
	if ratePerMinute > 0 {
		limiter = ratelimiter.NewRateLimiter(ratePerMinute, time.Minute)
	}
	return coingecko.NewCoinGeckoMarket(cfg, httpClient, limiter)
}
