package store

import "WalletWatch/internal/model"

// Store persists user profiles. GetProfile returns (nil, nil) when the
// user has no profile yet.
type Store interface {
	GetProfile(userID int64) (*model.Profile, error)
	UpsertProfile(p *model.Profile) error
	ListScheduled() ([]*model.Profile, error)
	Close() error
}
