package pricing

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"WalletWatch/internal/model"
)

type stubPrimary struct {
	quotes map[string]model.AssetQuote
	err    error
	calls  int
}

func (s *stubPrimary) Quotes(context.Context) (map[string]model.AssetQuote, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.quotes, nil
}

func (s *stubPrimary) Name() string { return "primary-stub" }

type stubSecondary struct {
	prices map[string]float64
	errs   []error // per-attempt; the last entry repeats
	calls  int
}

func (s *stubSecondary) SpotPrices(context.Context) (map[string]float64, error) {
	i := s.calls
	s.calls++
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	if i >= 0 && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.prices, nil
}

func (s *stubSecondary) Name() string { return "secondary-stub" }

type fakeCache struct {
	prices   map[string]float64
	ok       bool
	writes   int
	writeErr error
}

func (c *fakeCache) Read() (map[string]float64, bool) { return c.prices, c.ok }

func (c *fakeCache) Write(prices map[string]float64) error {
	c.writes++
	if c.writeErr != nil {
		return c.writeErr
	}
	c.prices = prices
	c.ok = true
	return nil
}

func testPolicy(slept *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		Backoffs: []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 4 * time.Millisecond},
		Sleep: func(_ context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return nil
		},
	}
}

func primaryQuotes() map[string]model.AssetQuote {
	zro24, bnb24 := 3.5, -1.2
	return map[string]model.AssetQuote{
		model.SymbolZRO: {Symbol: model.SymbolZRO, PriceUSD: 1.5, Change24h: &zro24},
		model.SymbolBNB: {Symbol: model.SymbolBNB, PriceUSD: 600.0, Change24h: &bnb24},
	}
}

func checkStablePinned(t *testing.T, set model.PriceSet) {
	t.Helper()
	usdt, ok := set[model.SymbolUSDT]
	if !ok {
		t.Fatal("stable asset missing from price set")
	}
	if usdt.PriceUSD != 1.0 {
		t.Errorf("stable price: got %v, want exactly 1.0", usdt.PriceUSD)
	}
	if usdt.Change24h == nil || *usdt.Change24h != 0.0 {
		t.Errorf("stable 24h change: got %v, want 0.0", usdt.Change24h)
	}
}

func TestResolvePrimary(t *testing.T) {
	primary := &stubPrimary{quotes: primaryQuotes()}
	secondary := &stubSecondary{errs: []error{errors.New("must not be called")}}
	cache := &fakeCache{}
	r := NewResolver(primary, secondary, cache, testPolicy(nil), model.DefaultAssets())

	set, source, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if source != model.SourcePrimary {
		t.Errorf("source: got %s, want primary", source)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be touched, got %d calls", secondary.calls)
	}
	if cache.writes != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.writes)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(set))
	}
	if set[model.SymbolZRO].Change24h == nil {
		t.Error("primary quotes must carry 24h change")
	}
	checkStablePinned(t, set)
}

func TestResolveSecondaryAfterPrimaryFailure(t *testing.T) {
	primary := &stubPrimary{err: errors.New("timeout")}
	secondary := &stubSecondary{
		prices: map[string]float64{model.SymbolZRO: 1.8, model.SymbolBNB: 610, model.SymbolUSDT: 0.999},
		errs:   []error{nil},
	}
	cache := &fakeCache{}
	r := NewResolver(primary, secondary, cache, testPolicy(nil), model.DefaultAssets())

	set, source, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if source != model.SourceSecondary {
		t.Errorf("source: got %s, want secondary", source)
	}
	if secondary.calls != 1 {
		t.Errorf("expected 1 secondary call, got %d", secondary.calls)
	}
	if cache.writes != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.writes)
	}
	if set[model.SymbolZRO].Change24h != nil {
		t.Error("secondary quotes must not carry 24h change")
	}
	checkStablePinned(t, set)
}

func TestResolveSecondaryRetriesRateLimit(t *testing.T) {
	primary := &stubPrimary{err: errors.New("down")}
	secondary := &stubSecondary{errs: []error{&StatusError{Code: http.StatusTooManyRequests}}}
	cache := &fakeCache{prices: map[string]float64{model.SymbolZRO: 2.0, model.SymbolBNB: 600.0, model.SymbolUSDT: 1.0}, ok: true}

	var slept []time.Duration
	policy := testPolicy(&slept)
	r := NewResolver(primary, secondary, cache, policy, model.DefaultAssets())

	set, source, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if source != model.SourceCache {
		t.Errorf("source: got %s, want cache", source)
	}
	if secondary.calls != policy.Attempts() {
		t.Errorf("expected exactly %d secondary attempts, got %d", policy.Attempts(), secondary.calls)
	}
	// A delay follows every failed attempt except the last.
	if len(slept) != policy.Attempts()-1 {
		t.Errorf("expected %d sleeps, got %d", policy.Attempts()-1, len(slept))
	}
	for i, d := range slept {
		if d != policy.Backoffs[i] {
			t.Errorf("sleep %d: got %v, want %v", i, d, policy.Backoffs[i])
		}
	}
	if set[model.SymbolZRO].PriceUSD != 2.0 {
		t.Errorf("cached ZRO price: got %v", set[model.SymbolZRO].PriceUSD)
	}
	if set[model.SymbolZRO].Change24h != nil {
		t.Error("cached quotes must not carry 24h change")
	}
	checkStablePinned(t, set)
}

func TestResolveSecondaryRecoversAfterRateLimit(t *testing.T) {
	primary := &stubPrimary{err: errors.New("down")}
	secondary := &stubSecondary{
		prices: map[string]float64{model.SymbolZRO: 1.7, model.SymbolBNB: 605, model.SymbolUSDT: 1.0},
		errs:   []error{&StatusError{Code: http.StatusTooManyRequests}, nil},
	}
	var slept []time.Duration
	r := NewResolver(primary, secondary, &fakeCache{}, testPolicy(&slept), model.DefaultAssets())

	_, source, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if source != model.SourceSecondary {
		t.Errorf("source: got %s, want secondary", source)
	}
	if secondary.calls != 2 {
		t.Errorf("expected 2 secondary attempts, got %d", secondary.calls)
	}
	if len(slept) != 1 {
		t.Errorf("expected 1 sleep, got %d", len(slept))
	}
}

func TestResolveSecondaryNonRetryableSkipsRetries(t *testing.T) {
	primary := &stubPrimary{err: errors.New("down")}
	secondary := &stubSecondary{errs: []error{errors.New("decode failure")}}
	cache := &fakeCache{prices: map[string]float64{model.SymbolZRO: 2.0, model.SymbolBNB: 600.0, model.SymbolUSDT: 1.0}, ok: true}
	r := NewResolver(primary, secondary, cache, testPolicy(nil), model.DefaultAssets())

	_, source, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if source != model.SourceCache {
		t.Errorf("source: got %s, want cache", source)
	}
	if secondary.calls != 1 {
		t.Errorf("non-retryable error should stop after 1 attempt, got %d", secondary.calls)
	}
}

func TestResolveNoSourceNoCache(t *testing.T) {
	primary := &stubPrimary{err: errors.New("down")}
	secondary := &stubSecondary{errs: []error{&StatusError{Code: http.StatusInternalServerError}}}
	r := NewResolver(primary, secondary, &fakeCache{}, testPolicy(nil), model.DefaultAssets())

	_, _, err := r.Resolve(context.Background())
	if !errors.Is(err, ErrNoPriceSource) {
		t.Fatalf("expected ErrNoPriceSource, got %v", err)
	}
}

func TestResolveCacheWriteFailureIsNonFatal(t *testing.T) {
	primary := &stubPrimary{quotes: primaryQuotes()}
	cache := &fakeCache{writeErr: errors.New("disk full")}
	r := NewResolver(primary, &stubSecondary{errs: []error{nil}}, cache, testPolicy(nil), model.DefaultAssets())

	_, source, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve should succeed despite cache write failure: %v", err)
	}
	if source != model.SourcePrimary {
		t.Errorf("source: got %s, want primary", source)
	}
	if cache.writes != 1 {
		t.Errorf("expected the write to be attempted once, got %d", cache.writes)
	}
}
