package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"WalletWatch/internal/model"
)

// BinanceSource is the primary quote provider: spot price plus 24h change
// per market-priced asset. All requests belonging to one resolution must
// succeed or the whole result is discarded; partial data is never used.
type BinanceSource struct {
	BaseURL string
	Client  *http.Client
	Assets  []model.Asset
}

// NewBinanceSource creates a source with optional proxy support.
func NewBinanceSource(baseURL, proxyURL string, assets []model.Asset) *BinanceSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceSource{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		Assets: assets,
	}
}

func (s *BinanceSource) Name() string { return "binance" }

// Quotes fetches spot price and 24h change for every non-stable asset.
// The requests run concurrently and are awaited jointly.
func (s *BinanceSource) Quotes(ctx context.Context) (map[string]model.AssetQuote, error) {
	type result struct {
		price  float64
		change float64
	}
	results := make(map[string]*result)

	g, ctx := errgroup.WithContext(ctx)
	for _, a := range s.Assets {
		if a.Stable {
			continue
		}
		r := &result{}
		results[a.Symbol] = r
		pair := a.Pair
		g.Go(func() error {
			v, err := s.fetchField(ctx, "/api/v3/ticker/price?symbol="+pair, "price")
			if err != nil {
				return err
			}
			r.price = v
			return nil
		})
		g.Go(func() error {
			v, err := s.fetchField(ctx, "/api/v3/ticker/24hr?symbol="+pair, "priceChangePercent")
			if err != nil {
				return err
			}
			r.change = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quotes := make(map[string]model.AssetQuote, len(results))
	for sym, r := range results {
		change := r.change
		quotes[sym] = model.AssetQuote{Symbol: sym, PriceUSD: r.price, Change24h: &change}
	}
	return quotes, nil
}

// fetchField performs one GET and extracts a single decimal-string field
// from the JSON payload.
func (s *BinanceSource) fetchField(ctx context.Context, path, field string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("binance read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("binance decode: %w", err)
	}
	raw, ok := payload[field]
	if !ok {
		return 0, fmt.Errorf("binance: field %q missing", field)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, fmt.Errorf("binance: field %q not a string: %w", field, err)
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse %s: %w", field, err)
	}
	return v, nil
}
