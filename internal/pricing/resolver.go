package pricing

import (
	"context"
	"errors"
	"log"

	"WalletWatch/internal/model"
)

// ErrNoPriceSource is returned when every source, including the cache,
// failed to produce usable prices.
var ErrNoPriceSource = errors.New("no price source available")

// Primary returns full quotes (spot + 24h change) for the market-priced
// assets, all-or-nothing.
type Primary interface {
	Quotes(ctx context.Context) (map[string]model.AssetQuote, error)
	Name() string
}

// Secondary returns spot prices only, for all tracked assets.
type Secondary interface {
	SpotPrices(ctx context.Context) (map[string]float64, error)
	Name() string
}

// Resolver obtains a consistent price set, trying sources in strict
// priority order: primary, then secondary with bounded retry, then the
// persisted cache. Every returned set carries exactly one quote per
// tracked asset with the stable asset pinned at 1.0 / 0.0.
type Resolver struct {
	primary   Primary
	secondary Secondary
	cache     Cache
	retry     RetryPolicy
	assets    []model.Asset
}

func NewResolver(primary Primary, secondary Secondary, cache Cache, retry RetryPolicy, assets []model.Asset) *Resolver {
	return &Resolver{
		primary:   primary,
		secondary: secondary,
		cache:     cache,
		retry:     retry,
		assets:    assets,
	}
}

// Resolve returns the freshest obtainable price set together with its
// provenance. It fails only when no source and no valid cache entry exist.
func (r *Resolver) Resolve(ctx context.Context) (model.PriceSet, model.Source, error) {
	quotes, err := r.primary.Quotes(ctx)
	if err == nil {
		set := r.fromQuotes(quotes)
		r.writeCache(set)
		return set, model.SourcePrimary, nil
	}
	log.Printf("[WARN] %s source failed: %v", r.primary.Name(), err)

	if prices, ok := r.fetchSecondary(ctx); ok {
		set := r.fromSpotPrices(prices)
		r.writeCache(set)
		return set, model.SourceSecondary, nil
	}

	if prices, ok := r.cache.Read(); ok {
		log.Println("[WARN] serving prices from cache")
		return r.fromSpotPrices(prices), model.SourceCache, nil
	}
	return nil, "", ErrNoPriceSource
}

// fetchSecondary applies the retry policy: rate-limit and server errors
// get another attempt, anything else gives up immediately.
func (r *Resolver) fetchSecondary(ctx context.Context) (map[string]float64, bool) {
	for attempt := 0; attempt < r.retry.Attempts(); attempt++ {
		prices, err := r.secondary.SpotPrices(ctx)
		if err == nil {
			return prices, true
		}
		var se *StatusError
		if !errors.As(err, &se) || !se.Retryable() {
			log.Printf("[WARN] %s source failed: %v", r.secondary.Name(), err)
			return nil, false
		}
		log.Printf("[WARN] %s source: status %d (attempt %d/%d)",
			r.secondary.Name(), se.Code, attempt+1, r.retry.Attempts())
		if !r.retry.Wait(ctx, attempt) {
			break
		}
	}
	return nil, false
}

// fromQuotes builds a full price set from primary quotes, pinning the
// stable asset.
func (r *Resolver) fromQuotes(quotes map[string]model.AssetQuote) model.PriceSet {
	set := make(model.PriceSet, len(r.assets))
	for _, a := range r.assets {
		if a.Stable {
			set[a.Symbol] = stableQuote(a.Symbol)
			continue
		}
		set[a.Symbol] = quotes[a.Symbol]
	}
	return set
}

// fromSpotPrices builds a price set from bare spot prices: no 24h data
// for market assets, stable asset pinned.
func (r *Resolver) fromSpotPrices(prices map[string]float64) model.PriceSet {
	set := make(model.PriceSet, len(r.assets))
	for _, a := range r.assets {
		if a.Stable {
			set[a.Symbol] = stableQuote(a.Symbol)
			continue
		}
		set[a.Symbol] = model.AssetQuote{Symbol: a.Symbol, PriceUSD: prices[a.Symbol]}
	}
	return set
}

func stableQuote(symbol string) model.AssetQuote {
	change := 0.0
	return model.AssetQuote{Symbol: symbol, PriceUSD: 1.0, Change24h: &change}
}

// writeCache persists spot prices best-effort; the cache is an
// optimization, not a correctness requirement.
func (r *Resolver) writeCache(set model.PriceSet) {
	prices := make(map[string]float64, len(set))
	for sym, q := range set {
		prices[sym] = q.PriceUSD
	}
	if err := r.cache.Write(prices); err != nil {
		log.Printf("[WARN] cache write failed: %v", err)
	}
}
