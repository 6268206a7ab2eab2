package model

// Source records where a resolved price set came from. It is returned
// alongside every price set so consumers can warn about degraded data.
type Source string

const (
	SourcePrimary   Source = "primary"   // Binance spot prices + 24h change
	SourceSecondary Source = "secondary" // CoinGecko batched spot prices
	SourceCache     Source = "cache"     // last persisted price set
)

// AssetQuote is a single resolved price. Change24h is nil when the source
// carries no 24h change data (CoinGecko, cache).
type AssetQuote struct {
	Symbol    string
	PriceUSD  float64
	Change24h *float64
}

// PriceSet maps every tracked symbol to its quote. The stable asset is
// always present with price exactly 1.0 and change 0.0.
type PriceSet map[string]AssetQuote
