package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thejerf/abtime"
)

var ErrNotFound = errors.New("cache entry not found")

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 500
)

type Config struct {
	TTL     time.Duration
	MaxSize int
	Clock   abtime.AbstractTime
}

// Stats is a point-in-time view of cache counters
type Stats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// Memory is a bounded TTL cache keyed by string
type Memory[V any] struct {
	entries map[string]entry[V]
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	clock   abtime.AbstractTime

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

func NewMemory[V any](c Config) *Memory[V] {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.Clock == nil {
		c.Clock = abtime.NewRealTime()
	}

	return &Memory[V]{
		entries: make(map[string]entry[V]),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		clock:   c.Clock,
	}
}

// Get returns the cached value or ErrNotFound. Entries older than the TTL
// are dropped on read.
func (c *Memory[V]) Get(key string) (V, error) {
	var zero V

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return zero, ErrNotFound
	}

	if c.clock.Now().Sub(e.cachedAt) > c.ttl {
		c.misses.Add(1)
		c.Delete(key)
		return zero, ErrNotFound
	}

	c.hits.Add(1)
	return e.value, nil
}

func (c *Memory[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry[V]{value: value, cachedAt: c.clock.Now()}
	c.sets.Add(1)
}

// evictOldest must be called with mu held.
func (c *Memory[V]) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.cachedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.cachedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		c.evictions.Add(1)
	}
}

func (c *Memory[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[key]; existed {
		delete(c.entries, key)
		c.deletes.Add(1)
	}
}

func (c *Memory[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

func (c *Memory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Memory[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
