package model

// Asset describes one tracked portfolio asset and how each price source
// identifies it.
type Asset struct {
	Symbol  string // portfolio symbol, e.g. "ZRO"
	Pair    string // Binance ticker pair, e.g. "ZROUSDT"; empty for the stable asset
	GeckoID string // CoinGecko identifier, e.g. "layerzero"
	Stable  bool   // pinned to price 1.0 / change 0.0 by convention
}

// Tracked portfolio symbols.
const (
	SymbolZRO  = "ZRO"
	SymbolBNB  = "BNB"
	SymbolUSDT = "USDT"
)

// DefaultAssets returns the tracked asset set: two market-priced assets
// and the stable quote asset.
func DefaultAssets() []Asset {
	return []Asset{
		{Symbol: SymbolZRO, Pair: "ZROUSDT", GeckoID: "layerzero"},
		{Symbol: SymbolBNB, Pair: "BNBUSDT", GeckoID: "binancecoin"},
		{Symbol: SymbolUSDT, GeckoID: "tether", Stable: true},
	}
}
