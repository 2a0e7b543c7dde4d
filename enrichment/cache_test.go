package enrichment

import (
	"testing"
	"time"
)

func TestResultCacheGetSet(t *testing.T) {
	cache := NewResultCache(&CacheConfig{Enabled: true, TTL: 5 * time.Minute})

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := &ContactResult{Source: "batchdata", Success: true}
	cache.Set("key", want)

	got, ok := cache.Get("key")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.Source != "batchdata" || !got.Success {
		t.Errorf("got %+v, want stored result", got)
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, size 1", stats)
	}
}

func TestResultCacheExpiry(t *testing.T) {
	cache := NewResultCache(&CacheConfig{Enabled: true, TTL: time.Millisecond})

	cache.Set("key", &ContactResult{Source: "batchdata"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestResultCacheDisabled(t *testing.T) {
	cache := NewResultCache(&CacheConfig{Enabled: false, TTL: time.Hour})

	cache.Set("key", &ContactResult{Source: "batchdata"})
	if _, ok := cache.Get("key"); ok {
		t.Fatal("disabled cache must never hit")
	}
}

func TestResultCacheClear(t *testing.T) {
	cache := NewResultCache(&CacheConfig{Enabled: true, TTL: time.Hour})

	cache.Set("a", &ContactResult{})
	cache.Set("b", &ContactResult{})
	cache.Clear()

	if stats := cache.Stats(); stats.Size != 0 {
		t.Errorf("size after Clear = %d, want 0", stats.Size)
	}
}

func TestResultCacheClose(t *testing.T) {
	cache := NewResultCache(&CacheConfig{
		Enabled:         true,
		TTL:             time.Hour,
		CleanupInterval: time.Millisecond,
	})

	cache.Set("key", &ContactResult{Source: "batchdata"})
	cache.Close()
	cache.Close() // idempotent

	// The cache itself stays usable after the eviction loop stops.
	if _, ok := cache.Get("key"); !ok {
		t.Fatal("expected hit after Close")
	}
}
