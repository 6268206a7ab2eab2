package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"WalletWatch/internal/model"
)

// Sink receives the outcome of a scheduled firing.
type Sink interface {
	Deliver(userID int64, snap *model.Snapshot) error
	DeliverError(userID int64, message string) error
}

// SnapshotFunc produces a fresh portfolio snapshot for one user.
type SnapshotFunc func(ctx context.Context, userID int64) (*model.Snapshot, error)

// Manager keeps at most one recurring daily job per user. Replacing a
// schedule cancels the previous timer before the new one is registered,
// so two timers never coexist for the same user.
type Manager struct {
	cron     *cron.Cron
	snapshot SnapshotFunc
	sink     Sink
	timeout  time.Duration

	mu   sync.Mutex
	jobs map[int64]cron.EntryID
}

// NewManager creates a stopped manager; call Start to begin firing.
func NewManager(snapshot SnapshotFunc, sink Sink, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Manager{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		snapshot: snapshot,
		sink:     sink,
		timeout:  timeout,
		jobs:     make(map[int64]cron.EntryID),
	}
}

// Set registers a daily firing at the given UTC wall-clock time,
// replacing any existing job for the user.
func (m *Manager) Set(userID int64, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid schedule time %02d:%02d", hour, minute)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.jobs[userID]; ok {
		m.cron.Remove(id)
		delete(m.jobs, userID)
	}
	spec := fmt.Sprintf("0 %d %d * * *", minute, hour)
	id, err := m.cron.AddFunc(spec, func() { m.fire(userID) })
	if err != nil {
		return fmt.Errorf("register daily job: %w", err)
	}
	m.jobs[userID] = id
	log.Printf("[INFO] user %d scheduled daily at %02d:%02d UTC", userID, hour, minute)
	return nil
}

// Clear removes the user's job, if any.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.jobs[userID]; ok {
		m.cron.Remove(id)
		delete(m.jobs, userID)
		log.Printf("[INFO] user %d schedule cleared", userID)
	}
}

// Scheduled reports how many users currently have a job registered.
func (m *Manager) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// NextRun returns the next firing time of the user's job. Only populated
// once the manager has started.
func (m *Manager) NextRun(userID int64) (time.Time, bool) {
	m.mu.Lock()
	id, ok := m.jobs[userID]
	m.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	e := m.cron.Entry(id)
	if !e.Valid() {
		return time.Time{}, false
	}
	return e.Next, true
}

// Start starts the cron runner.
func (m *Manager) Start() {
	m.cron.Start()
	log.Println("[INFO] schedule manager started")
}

// Stop stops the cron runner gracefully.
func (m *Manager) Stop() {
	m.cron.Stop()
	log.Println("[INFO] schedule manager stopped")
}

// fire runs one scheduled delivery. Failures are reported through the
// sink and never unregister the job; the next day's firing is unaffected.
func (m *Manager) fire(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	snap, err := m.snapshot(ctx, userID)
	if err != nil {
		log.Printf("[ERROR] scheduled snapshot for user %d: %v", userID, err)
		msg := "Could not fetch prices for the scheduled report. Next attempt tomorrow."
		if derr := m.sink.DeliverError(userID, msg); derr != nil {
			log.Printf("[ERROR] deliver error notice to user %d: %v", userID, derr)
		}
		return
	}
	if err := m.sink.Deliver(userID, snap); err != nil {
		log.Printf("[ERROR] deliver snapshot to user %d: %v", userID, err)
	}
}
