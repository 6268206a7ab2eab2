package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"WalletWatch/internal/model"
)

// StatusError is a non-OK HTTP response from a price source, kept typed
// so callers can tell rate-limit and server errors apart from the rest.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Retryable reports whether the status is worth another attempt
// (rate limiting or a server-side failure).
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// CoinGeckoSource is the fallback quote provider: one batched spot-price
// request for all tracked assets. It carries no 24h change data.
type CoinGeckoSource struct {
	BaseURL string
	Client  *http.Client
	Assets  []model.Asset
}

// NewCoinGeckoSource creates a source with optional proxy support.
func NewCoinGeckoSource(baseURL, proxyURL string, assets []model.Asset) *CoinGeckoSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoSource{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   25 * time.Second,
			Transport: transport,
		},
		Assets: assets,
	}
}

func (s *CoinGeckoSource) Name() string { return "coingecko" }

// SpotPrices returns the USD spot price for every tracked symbol.
func (s *CoinGeckoSource) SpotPrices(ctx context.Context) (map[string]float64, error) {
	ids := make([]string, 0, len(s.Assets))
	for _, a := range s.Assets {
		ids = append(ids, a.GeckoID)
	}
	u := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd",
		s.BaseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var payload map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("coingecko decode: %w", err)
	}

	prices := make(map[string]float64, len(s.Assets))
	for _, a := range s.Assets {
		entry, ok := payload[a.GeckoID]
		if !ok {
			return nil, fmt.Errorf("coingecko: no price for %s", a.GeckoID)
		}
		prices[a.Symbol] = entry.USD
	}
	return prices, nil
}
