package store

import (
	"testing"

	"WalletWatch/internal/model"
)

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()

	in := &model.Profile{
		UserID:    1,
		Holdings:  map[string]float64{model.SymbolZRO: 10},
		Baselines: map[string]float64{model.SymbolZRO: 1.5},
		Schedule:  &model.DailyTime{Hour: 9, Minute: 0},
	}
	if err := s.UpsertProfile(in); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Mutating the input after the upsert must not affect the store.
	in.Holdings[model.SymbolZRO] = 99
	in.Schedule.Hour = 23

	got, err := s.GetProfile(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Holdings[model.SymbolZRO] != 10 {
		t.Errorf("stored holdings changed through the caller's map: %v", got.Holdings)
	}
	if got.Schedule.Hour != 9 {
		t.Errorf("stored schedule changed through the caller's pointer: %+v", got.Schedule)
	}

	// Mutating a returned profile must not affect later reads.
	got.Holdings[model.SymbolZRO] = 77
	got.Baselines[model.SymbolZRO] = 0

	again, err := s.GetProfile(1)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.Holdings[model.SymbolZRO] != 10 || again.Baselines[model.SymbolZRO] != 1.5 {
		t.Errorf("store shares state with returned profiles: %v %v", again.Holdings, again.Baselines)
	}

	listed, err := s.ListScheduled()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 scheduled profile, got %d", len(listed))
	}
	listed[0].Holdings[model.SymbolZRO] = 5
	final, _ := s.GetProfile(1)
	if final.Holdings[model.SymbolZRO] != 10 {
		t.Errorf("listed profiles share state with the store: %v", final.Holdings)
	}
}
