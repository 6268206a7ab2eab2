package model

import "time"

// SnapshotItem is one row of the portfolio report.
type SnapshotItem struct {
	Symbol    string
	Quantity  float64
	Price     float64
	Value     float64
	ChangePct float64  // % from baseline, rounded to 2 decimals
	Change24h *float64 // nil when the price source had no 24h data
}

// Snapshot is a full portfolio valuation. Built fresh on every request,
// never persisted.
type Snapshot struct {
	Items          []SnapshotItem
	TotalValue     float64
	TotalChangePct float64 // value-weighted, rounded to 2 decimals
	Source         Source
	TakenAt        time.Time
}
