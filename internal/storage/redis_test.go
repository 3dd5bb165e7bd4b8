// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

func setupMiniredis(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCache(client, "", ttl, nil)
}

func TestRedisCacheGetSet(t *testing.T) {
	mr, c := setupMiniredis(t, time.Minute)

	_, ok := c.Get("dns:example.com")
	assert.False(t, ok, "expected miss on empty cache")

	want := availability.DomainResult{
		Domain:      "example.com",
		BaseDomain:  "example",
		TLD:         ".com",
		Status:      availability.StatusTaken,
		CheckMethod: availability.MethodDNS,
		DNSRecords:  []string{"A: 192.0.2.1"},
	}
	c.Set("dns:example.com", want)

	assert.True(t, mr.Exists("availability:dns:example.com"))
	assert.Equal(t, time.Minute, mr.TTL("availability:dns:example.com"))

	got, ok := c.Get("dns:example.com")
	require.True(t, ok, "expected hit after Set")
	assert.Equal(t, want.Domain, got.Domain)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.CheckMethod, got.CheckMethod)
	assert.Equal(t, want.DNSRecords, got.DNSRecords)
}

func TestRedisCacheExpiration(t *testing.T) {
	mr, c := setupMiniredis(t, 50*time.Millisecond)

	c.Set("k", availability.DomainResult{Domain: "test.com", Status: availability.StatusAvailable})
	_, ok := c.Get("k")
	require.True(t, ok, "expected hit before expiration")

	mr.FastForward(time.Second)

	_, ok = c.Get("k")
	assert.False(t, ok, "expected miss after expiration")
}

func TestRedisCacheFlushKeepsForeignKeys(t *testing.T) {
	mr, c := setupMiniredis(t, time.Minute)
	require.NoError(t, mr.Set("unrelated", "keep me"))

	for i := range 250 {
		c.Set(fmt.Sprintf("dns:d%d.com", i), availability.DomainResult{Status: availability.StatusTaken})
	}

	c.Flush()

	keys := mr.Keys()
	assert.Equal(t, []string{"unrelated"}, keys)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	mr, c := setupMiniredis(t, time.Minute)
	require.NoError(t, mr.Set("availability:bad", "{not json"))

	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestRedisCacheUnavailable(t *testing.T) {
	client := Dial("127.0.0.1:1", "", 0)
	c := NewRedisCache(client, "test:", time.Minute, nil)
	c.opTimeout = 200 * time.Millisecond
	t.Cleanup(func() { _ = c.Close() })

	assert.Error(t, c.Ping(context.Background()))

	// A down cache degrades to misses.
	c.Set("k", availability.DomainResult{Status: availability.StatusTaken})
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Flush()
}

func TestRedisCacheBacksChecker(t *testing.T) {
	_, c := setupMiniredis(t, time.Minute)

	var calls int
	whois := availability.WhoisClientFunc(func(context.Context, string) (string, error) {
		calls++
		return "Registrar: Example Registrar\nCreation Date: 2001-01-01", nil
	})
	checker := availability.New(
		availability.WithMethod(availability.MethodWHOIS),
		availability.WithWhoisClient(whois),
		availability.WithRateLimitDelay(0),
		availability.WithResolvers("127.0.0.1:1"),
		availability.WithCache(c),
	)

	for range 2 {
		r, err := checker.CheckOne(context.Background(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, availability.StatusTaken, r.Status)
	}
	assert.Equal(t, 1, calls)
}
