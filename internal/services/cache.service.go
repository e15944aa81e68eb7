package services

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
)

// MaxCachedPaths bounds how many paths a UsageCache holds at once
const MaxCachedPaths = 256

type cachedUsage struct {
	stat    *disk.UsageStat
	fetched time.Time
}

// UsageCache holds recent disk usage results per path with a TTL.
// It keeps a burst of probe requests down to one OS query per path per TTL.
type UsageCache struct {
	mu      sync.RWMutex
	entries map[string]cachedUsage
	ttl     time.Duration
	fetch   UsageFunc
	now     func() time.Time
}

// NewUsageCache wraps fetch with a TTL cache, nil fetch means gopsutil
func NewUsageCache(ttl time.Duration, fetch UsageFunc) *UsageCache {
	if fetch == nil {
		fetch = disk.UsageWithContext
	}
	return &UsageCache{
		entries: make(map[string]cachedUsage),
		ttl:     ttl,
		fetch:   fetch,
		now:     time.Now,
	}
}

// isCacheValid checks if cache is still valid
func (uc *UsageCache) isCacheValid(fetched time.Time) bool {
	return uc.now().Sub(fetched) < uc.ttl
}

// Usage returns cached usage for path if valid, otherwise fetches fresh.
// It satisfies UsageFunc.
func (uc *UsageCache) Usage(ctx context.Context, path string) (*disk.UsageStat, error) {
	uc.mu.RLock()
	entry, ok := uc.entries[path]
	if ok && uc.isCacheValid(entry.fetched) {
		defer uc.mu.RUnlock()
		return entry.stat, nil
	}
	uc.mu.RUnlock()

	stat, err := uc.fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	uc.store(path, stat)
	uc.mu.Unlock()

	return stat, nil
}

// store drops expired entries before adding a new path. When every slot
// holds a live entry the result goes uncached. Caller holds mu.
func (uc *UsageCache) store(path string, stat *disk.UsageStat) {
	if _, exists := uc.entries[path]; !exists {
		for p, entry := range uc.entries {
			if !uc.isCacheValid(entry.fetched) {
				delete(uc.entries, p)
			}
		}
		if len(uc.entries) >= MaxCachedPaths {
			return
		}
	}
	uc.entries[path] = cachedUsage{stat: stat, fetched: uc.now()}
}

// Clear drops all cached values
func (uc *UsageCache) Clear() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.entries = make(map[string]cachedUsage)
}
