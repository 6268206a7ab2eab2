package snapshot

import (
	"math"
	"testing"

	"WalletWatch/internal/model"
)

func pinnedZero() *float64 {
	z := 0.0
	return &z
}

func testPrices(zro, bnb float64) model.PriceSet {
	zro24 := 4.567
	return model.PriceSet{
		model.SymbolZRO:  {Symbol: model.SymbolZRO, PriceUSD: zro, Change24h: &zro24},
		model.SymbolBNB:  {Symbol: model.SymbolBNB, PriceUSD: bnb},
		model.SymbolUSDT: {Symbol: model.SymbolUSDT, PriceUSD: 1.0, Change24h: pinnedZero()},
	}
}

func TestBuildWorkedExample(t *testing.T) {
	profile := &model.Profile{
		Holdings:  map[string]float64{model.SymbolZRO: 10, model.SymbolBNB: 1, model.SymbolUSDT: 0},
		Baselines: map[string]float64{model.SymbolZRO: 1.0, model.SymbolBNB: 500.0},
	}
	snap := Build(profile, testPrices(1.5, 600.0), model.SourcePrimary)

	if len(snap.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(snap.Items))
	}
	zro, bnb := snap.Items[0], snap.Items[1]
	if zro.Value != 15.0 {
		t.Errorf("ZRO value: got %v, want 15", zro.Value)
	}
	if zro.ChangePct != 50.0 {
		t.Errorf("ZRO change: got %v, want 50", zro.ChangePct)
	}
	if bnb.Value != 600.0 {
		t.Errorf("BNB value: got %v, want 600", bnb.Value)
	}
	if bnb.ChangePct != 20.0 {
		t.Errorf("BNB change: got %v, want 20", bnb.ChangePct)
	}
	if snap.TotalValue != 615.0 {
		t.Errorf("total value: got %v, want 615", snap.TotalValue)
	}
	// 15/615*50 + 600/615*20 = 20.7317... -> 20.73
	if snap.TotalChangePct != 20.73 {
		t.Errorf("weighted total change: got %v, want 20.73", snap.TotalChangePct)
	}
	if snap.Source != model.SourcePrimary {
		t.Errorf("source: got %s", snap.Source)
	}
}

func TestBuildItemOrder(t *testing.T) {
	profile := &model.Profile{
		Holdings: map[string]float64{model.SymbolZRO: 1, model.SymbolBNB: 1, model.SymbolUSDT: 1},
		Placebo:  2,
	}
	snap := Build(profile, testPrices(1.5, 600.0), model.SourceSecondary)

	want := []string{model.SymbolZRO, model.SymbolBNB, model.SymbolUSDT, model.SymbolZRO}
	for i, sym := range want {
		if snap.Items[i].Symbol != sym {
			t.Errorf("item %d: got %s, want %s", i, snap.Items[i].Symbol, sym)
		}
	}
}

func TestBuildPlaceboRow(t *testing.T) {
	profile := &model.Profile{
		Holdings:  map[string]float64{model.SymbolZRO: 10},
		Placebo:   1040,
		Baselines: map[string]float64{model.SymbolZRO: 1.0},
	}
	snap := Build(profile, testPrices(1.5, 600.0), model.SourcePrimary)

	lead, placebo := snap.Items[0], snap.Items[3]
	if placebo.Quantity != 1040 {
		t.Errorf("placebo quantity: got %v", placebo.Quantity)
	}
	if placebo.Price != lead.Price {
		t.Errorf("placebo must reuse the real price: %v vs %v", placebo.Price, lead.Price)
	}
	if placebo.ChangePct != lead.ChangePct {
		t.Errorf("placebo must reuse the real change: %v vs %v", placebo.ChangePct, lead.ChangePct)
	}
	if placebo.Value != 1040*1.5 {
		t.Errorf("placebo value: got %v", placebo.Value)
	}
}

func TestBuildMissingBaselineMeansNoChange(t *testing.T) {
	profile := &model.Profile{
		Holdings: map[string]float64{model.SymbolZRO: 10, model.SymbolBNB: 1},
	}
	snap := Build(profile, testPrices(1.5, 600.0), model.SourcePrimary)

	for _, it := range snap.Items {
		if it.ChangePct != 0 {
			t.Errorf("%s: expected 0%% change without baseline, got %v", it.Symbol, it.ChangePct)
		}
	}
	if snap.TotalChangePct != 0 {
		t.Errorf("total change: got %v, want 0", snap.TotalChangePct)
	}
}

func TestBuildZeroHoldings(t *testing.T) {
	profile := &model.Profile{
		Baselines: map[string]float64{model.SymbolZRO: 1.0, model.SymbolBNB: 500.0},
	}
	snap := Build(profile, testPrices(1.5, 600.0), model.SourceCache)

	if snap.TotalValue != 0 {
		t.Errorf("total value: got %v, want 0", snap.TotalValue)
	}
	if snap.TotalChangePct != 0 {
		t.Errorf("empty portfolio must report 0%% total change, got %v", snap.TotalChangePct)
	}
}

func TestBuildRoundsPercentages(t *testing.T) {
	profile := &model.Profile{
		Holdings:  map[string]float64{model.SymbolZRO: 3},
		Baselines: map[string]float64{model.SymbolZRO: 3.0},
	}
	// (1/3) of a 100% move -> 33.333...% must round to 33.33
	prices := testPrices(4.0, 600.0)
	snap := Build(profile, prices, model.SourcePrimary)

	if snap.Items[0].ChangePct != 33.33 {
		t.Errorf("change: got %v, want 33.33", snap.Items[0].ChangePct)
	}
	if got := snap.Items[0].Change24h; got == nil || *got != 4.57 {
		t.Errorf("24h change should round to 4.57, got %v", got)
	}
	// Value itself stays unrounded for downstream accumulation.
	if math.Abs(snap.Items[0].Value-12.0) > 1e-9 {
		t.Errorf("value: got %v", snap.Items[0].Value)
	}
}
