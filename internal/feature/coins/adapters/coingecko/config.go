// Package coingecko provides a client for the CoinGecko cryptocurrency
// market data API.
package coingecko

import (
	"os"
	"time"
)

// DefaultBaseURL is the public CoinGecko API v3 endpoint.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// apiKeyHeader carries the optional demo API key. Without it the client runs
// under the unauthenticated public rate limits.
const apiKeyHeader = "x-cg-demo-api-key"

// Config holds configuration for the CoinGecko API client.
type Config struct {
	APIKey  string        // Optional demo API key; empty means public tier
	BaseURL string        // Base URL for the API
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads CoinGecko configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("COINGECKO_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("COINGECKO_API_KEY"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
