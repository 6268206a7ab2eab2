package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"WalletWatch/internal/model"
)

// SQLiteStore persists profiles to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so long-polling reads don't block scheduled writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		user_id       INTEGER PRIMARY KEY,
		zro           REAL DEFAULT 0,
		bnb           REAL DEFAULT 0,
		usdt          REAL DEFAULT 0,
		placebo_zro   REAL DEFAULT 0,
		baseline_zro  REAL,
		baseline_bnb  REAL,
		baseline_usdt REAL,
		created_at    TEXT,
		daily_hour    INTEGER,
		daily_minute  INTEGER
	)`)
	return err
}

const profileColumns = `user_id, zro, bnb, usdt, placebo_zro,
	baseline_zro, baseline_bnb, baseline_usdt,
	created_at, daily_hour, daily_minute`

func (s *SQLiteStore) GetProfile(userID int64) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) UpsertProfile(p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hour, minute any
	if p.Schedule != nil {
		hour, minute = p.Schedule.Hour, p.Schedule.Minute
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := s.db.Exec(`INSERT INTO profiles
		(`+profileColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET
			zro=excluded.zro,
			bnb=excluded.bnb,
			usdt=excluded.usdt,
			placebo_zro=excluded.placebo_zro,
			baseline_zro=excluded.baseline_zro,
			baseline_bnb=excluded.baseline_bnb,
			baseline_usdt=excluded.baseline_usdt,
			created_at=excluded.created_at,
			daily_hour=excluded.daily_hour,
			daily_minute=excluded.daily_minute`,
		p.UserID,
		p.Holdings[model.SymbolZRO],
		p.Holdings[model.SymbolBNB],
		p.Holdings[model.SymbolUSDT],
		p.Placebo,
		nullFloat(p.Baselines, model.SymbolZRO),
		nullFloat(p.Baselines, model.SymbolBNB),
		nullFloat(p.Baselines, model.SymbolUSDT),
		created.Format(time.RFC3339),
		hour, minute,
	)
	return err
}

func (s *SQLiteStore) ListScheduled() ([]*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ` + profileColumns + ` FROM profiles
		WHERE daily_hour IS NOT NULL AND daily_minute IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var (
		p                 model.Profile
		zro, bnb, usdt    float64
		bzro, bbnb, busdt sql.NullFloat64
		createdAt         sql.NullString
		hour, minute      sql.NullInt64
	)
	if err := row.Scan(&p.UserID, &zro, &bnb, &usdt, &p.Placebo,
		&bzro, &bbnb, &busdt, &createdAt, &hour, &minute); err != nil {
		return nil, err
	}

	p.Holdings = map[string]float64{
		model.SymbolZRO:  zro,
		model.SymbolBNB:  bnb,
		model.SymbolUSDT: usdt,
	}
	p.Baselines = map[string]float64{}
	if bzro.Valid {
		p.Baselines[model.SymbolZRO] = bzro.Float64
	}
	if bbnb.Valid {
		p.Baselines[model.SymbolBNB] = bbnb.Float64
	}
	if busdt.Valid {
		p.Baselines[model.SymbolUSDT] = busdt.Float64
	}
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}
	if hour.Valid && minute.Valid {
		p.Schedule = &model.DailyTime{Hour: int(hour.Int64), Minute: int(minute.Int64)}
	}
	return &p, nil
}

func nullFloat(m map[string]float64, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return nil
}
