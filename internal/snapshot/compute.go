// Package snapshot turns a user profile and a resolved price set into a
// portfolio valuation report.
package snapshot

import (
	"math"
	"time"

	"WalletWatch/internal/model"
)

// Build computes per-asset values, percentage changes from the setup
// baselines and the value-weighted total change. It never fails: a
// missing baseline reads as 0% change and a missing quantity as a zero
// holding. Accumulation uses unrounded values; only percentage fields are
// rounded here, monetary figures round at formatting time.
func Build(profile *model.Profile, prices model.PriceSet, source model.Source) *model.Snapshot {
	snap := &model.Snapshot{Source: source, TakenAt: time.Now().UTC()}

	type part struct {
		value  float64
		change float64
	}
	var parts []part

	add := func(symbol string, qty float64) {
		q := prices[symbol]
		change := changePct(q.PriceUSD, profile.Baselines[symbol])
		value := qty * q.PriceUSD
		snap.Items = append(snap.Items, model.SnapshotItem{
			Symbol:    symbol,
			Quantity:  qty,
			Price:     q.PriceUSD,
			Value:     value,
			ChangePct: change,
			Change24h: round24h(q.Change24h),
		})
		snap.TotalValue += value
		parts = append(parts, part{value: value, change: change})
	}

	add(model.SymbolZRO, profile.Holdings[model.SymbolZRO])
	add(model.SymbolBNB, profile.Holdings[model.SymbolBNB])
	add(model.SymbolUSDT, profile.Holdings[model.SymbolUSDT])
	// The placebo balance mirrors the lead asset's price and baseline but
	// keeps its own quantity, always listed last.
	add(model.SymbolZRO, profile.Placebo)

	if snap.TotalValue > 0 {
		var weighted float64
		for _, p := range parts {
			weighted += p.value / snap.TotalValue * p.change
		}
		snap.TotalChangePct = round2(weighted)
	}
	return snap
}

// changePct is the percentage move from the baseline price, rounded to
// two decimals. An absent or zero baseline reads as no change.
func changePct(price, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return round2((price - baseline) / baseline * 100)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round24h(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
