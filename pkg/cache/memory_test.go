package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/abtime"
)

func newTestCache(ttl time.Duration, maxSize int) (*Memory[string], *abtime.ManualTime) {
	clock := abtime.NewManual()
	return NewMemory[string](Config{TTL: ttl, MaxSize: maxSize, Clock: clock}), clock
}

func TestMemoryGetSetShouldStoreAndRetrieve(t *testing.T) {
	cache, _ := newTestCache(5*time.Minute, 500)

	cache.Set("hash789", "user456")

	got, err := cache.Get("hash789")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "user456" {
		t.Errorf("Expected user456, got %s", got)
	}
}

func TestMemoryGetNonExistentShouldReturnErrNotFound(t *testing.T) {
	cache, _ := newTestCache(5*time.Minute, 500)

	_, err := cache.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryExpiryShouldExpireEntriesAfterTTL(t *testing.T) {
	cache, clock := newTestCache(100*time.Millisecond, 500)

	cache.Set("hash789", "user456")

	if _, err := cache.Get("hash789"); err != nil {
		t.Error("Entry should exist immediately after Set")
	}

	clock.Advance(150 * time.Millisecond)

	if _, err := cache.Get("hash789"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after TTL, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry to be dropped, Len() = %d", cache.Len())
	}
}

func TestMemoryEvictionShouldDropOldestWhenFull(t *testing.T) {
	cache, clock := newTestCache(time.Hour, 3)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("k%d", i), "v")
		clock.Advance(time.Second)
	}
	cache.Set("k3", "v")

	if cache.Len() != 3 {
		t.Errorf("Expected Len() 3, got %d", cache.Len())
	}
	if _, err := cache.Get("k0"); !errors.Is(err, ErrNotFound) {
		t.Error("Expected oldest entry k0 to be evicted")
	}
	if _, err := cache.Get("k3"); err != nil {
		t.Error("Expected newest entry k3 to be present")
	}
	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("Expected 1 eviction, got %d", got)
	}
}

func TestMemoryOverwriteShouldNotEvict(t *testing.T) {
	cache, _ := newTestCache(time.Hour, 1)

	cache.Set("k", "a")
	cache.Set("k", "b")

	got, _ := cache.Get("k")
	if got != "b" {
		t.Errorf("Expected b, got %s", got)
	}
	if cache.Stats().Evictions != 0 {
		t.Error("Overwriting an existing key should not evict")
	}
}

func TestMemoryStatsShouldCountOperations(t *testing.T) {
	cache, _ := newTestCache(time.Hour, 10)

	cache.Set("a", "1")
	cache.Get("a")
	cache.Get("missing")
	cache.Delete("a")
	cache.Delete("a")

	stats := cache.Stats()
	if stats.Sets != 1 || stats.Hits != 1 || stats.Misses != 1 || stats.Deletes != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.TTL != time.Hour {
		t.Errorf("Expected TTL 1h, got %v", stats.TTL)
	}
}

func TestMemoryDefaults(t *testing.T) {
	cache := NewMemory[int](Config{})

	if cache.ttl != DefaultTTL || cache.maxSize != DefaultMaxSize {
		t.Errorf("Expected defaults, got ttl=%v maxSize=%d", cache.ttl, cache.maxSize)
	}
}

func TestMemoryClear(t *testing.T) {
	cache, _ := newTestCache(time.Hour, 10)
	cache.Set("a", "1")
	cache.Set("b", "2")

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, Len() = %d", cache.Len())
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	cache, _ := newTestCache(time.Hour, 50)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%10)
			cache.Set(key, "v")
			cache.Get(key)
			cache.Delete(key)
		}(i)
	}
	wg.Wait()
}
