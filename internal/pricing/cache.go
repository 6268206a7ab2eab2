package pricing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a persisted price set stays usable.
const DefaultCacheTTL = 180 * time.Second

// Cache is a single-slot store of the last successfully fetched prices.
// Read reports false when no entry exists or the entry is older than the
// TTL. Write overwrites the whole slot unconditionally.
type Cache interface {
	Read() (map[string]float64, bool)
	Write(prices map[string]float64) error
}

// cacheRecord is the on-disk format. Ts is unix seconds.
type cacheRecord struct {
	Ts     float64            `json:"ts"`
	Prices map[string]float64 `json:"prices"`
}

// FileCache persists the record as a JSON file, replaced atomically on
// every write so concurrent resolutions race harmlessly (last writer wins).
type FileCache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewFileCache creates a file-backed cache at path. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewFileCache(path string, ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &FileCache{path: path, ttl: ttl, now: time.Now}
}

func (c *FileCache) Read() (map[string]float64, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	if len(rec.Prices) == 0 {
		return nil, false
	}
	elapsed := float64(c.now().UnixNano())/float64(time.Second) - rec.Ts
	if elapsed > c.ttl.Seconds() {
		return nil, false
	}
	return rec.Prices, true
}

func (c *FileCache) Write(prices map[string]float64) error {
	rec := cacheRecord{
		Ts:     float64(c.now().UnixNano()) / float64(time.Second),
		Prices: prices,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// MemoryCache is an in-process Cache used in tests.
type MemoryCache struct {
	mu     sync.Mutex
	prices map[string]float64
	at     time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Read() (map[string]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prices == nil || c.now().Sub(c.at) > c.ttl {
		return nil, false
	}
	out := make(map[string]float64, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out, true
}

func (c *MemoryCache) Write(prices map[string]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices = make(map[string]float64, len(prices))
	for k, v := range prices {
		c.prices[k] = v
	}
	c.at = c.now()
	return nil
}
