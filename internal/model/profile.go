package model

import "time"

// DailyTime is a daily UTC wall-clock firing time.
type DailyTime struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// Profile holds one user's portfolio setup.
//
// Holdings are quantities per tracked symbol. Placebo is a second ZRO
// balance reported like a normal holding but accounted separately.
// Baselines are the per-symbol prices recorded at setup time and serve as
// the reference point for percentage-change display; a missing baseline
// reads as 0% change.
type Profile struct {
	UserID    int64
	Holdings  map[string]float64
	Placebo   float64
	Baselines map[string]float64
	Schedule  *DailyTime
	CreatedAt time.Time
}
