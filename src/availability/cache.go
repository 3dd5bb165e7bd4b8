// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache defines an interface for caching check results.
// Implement this interface to provide a custom cache backend
// (e.g., Redis, memcached) via the [WithCache] option.
type Cache interface {
	// Get retrieves a cached result by key.
	// Returns the result and true if found and not expired,
	// or a zero DomainResult and false otherwise.
	Get(key string) (DomainResult, bool)

	// Set stores a result in the cache with the configured TTL.
	Set(key string, val DomainResult)

	// Flush removes all entries from the cache.
	Flush()
}

// cacheEntry holds a cached result with its expiration time.
type cacheEntry struct {
	result    DomainResult
	expiresAt time.Time
}

// memoryCache is the default in-memory cache implementation with TTL support.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewMemoryCache creates an in-memory [Cache] whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) Cache {
	return newMemoryCache(ttl)
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	return &memoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns false if the entry does not exist or has expired.
func (c *memoryCache) Get(key string) (DomainResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return DomainResult{}, false
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// The entry may have been refreshed while unlocked.
		if current, exists := c.entries[key]; exists && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return DomainResult{}, false
	}

	return entry.result, true
}

func (c *memoryCache) Set(key string, val DomainResult) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		result:    val,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *memoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// CacheKey returns the key a result for domain checked with method is
// stored under.
func CacheKey(method CheckMethod, domain string) string {
	return fmt.Sprintf("%s:%s", method, normalizeDomain(domain))
}

// cachingProbe serves verdicts from a [Cache] and collapses concurrent
// checks of the same domain into one probe call. Error results are never
// cached.
type cachingProbe struct {
	inner Probe
	cache Cache
	group singleflight.Group
}

func newCachingProbe(p Probe, cache Cache) *cachingProbe {
	return &cachingProbe{inner: p, cache: cache}
}

func (c *cachingProbe) Method() CheckMethod          { return c.inner.Method() }
func (c *cachingProbe) CanHandle(domain string) bool { return c.inner.CanHandle(domain) }
func (c *cachingProbe) Config() ProbeConfig          { return c.inner.Config() }
func (c *cachingProbe) SetConfig(cfg ProbeConfig)    { c.inner.SetConfig(cfg) }

func (c *cachingProbe) Probe(ctx context.Context, domain string) DomainResult {
	key := CacheKey(c.inner.Method(), domain)
	if cached, ok := c.cache.Get(key); ok {
		return relabel(cached, domain)
	}

	start := time.Now()
	if err := ctx.Err(); err != nil {
		return errorResult(domain, c.inner.Method(), err, start)
	}
	ch := c.group.DoChan(key, func() (v any, err error) {
		// DoChan re-panics on its own goroutine, where nothing can recover.
		defer func() {
			if r := recover(); r != nil {
				v = errorResult(domain, c.inner.Method(), fmt.Errorf("%w: %v", ErrInternalPanic, r), start)
			}
		}()

		// The flight is shared, so one caller giving up must not cancel it
		// for the others. The probe's own timeout still bounds it.
		fctx := context.WithoutCancel(ctx)
		if timeout := c.inner.Config().Timeout; timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, timeout)
			defer cancel()
		}

		result := c.inner.Probe(fctx, domain)
		if result.Status == StatusAvailable || result.Status == StatusTaken {
			c.cache.Set(key, result)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return errorResult(domain, c.inner.Method(), ctx.Err(), start)
	case res := <-ch:
		return relabel(res.Val.(DomainResult), domain)
	}
}

// relabel returns r as a result for domain, which may differ from the
// cached spelling in case or a trailing dot.
func relabel(r DomainResult, domain string) DomainResult {
	r.Domain = domain
	r.BaseDomain, r.TLD = SplitDomain(domain)
	return r
}
