package store

import (
	"sync"

	"WalletWatch/internal/model"
)

// MemoryStore keeps profiles in memory. Used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[int64]*model.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[int64]*model.Profile)}
}

func (s *MemoryStore) GetProfile(userID int64) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (s *MemoryStore) UpsertProfile(p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = cloneProfile(p)
	return nil
}

func (s *MemoryStore) ListScheduled() ([]*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Profile
	for _, p := range s.profiles {
		if p.Schedule != nil {
			out = append(out, cloneProfile(p))
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// cloneProfile copies the profile and its maps so callers and the store
// never share mutable state, matching the SQLite store's value semantics.
func cloneProfile(p *model.Profile) *model.Profile {
	cp := *p
	if p.Holdings != nil {
		cp.Holdings = make(map[string]float64, len(p.Holdings))
		for k, v := range p.Holdings {
			cp.Holdings[k] = v
		}
	}
	if p.Baselines != nil {
		cp.Baselines = make(map[string]float64, len(p.Baselines))
		for k, v := range p.Baselines {
			cp.Baselines[k] = v
		}
	}
	if p.Schedule != nil {
		sched := *p.Schedule
		cp.Schedule = &sched
	}
	return &cp
}
