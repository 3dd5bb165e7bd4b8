// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

func whoisProbe(t *testing.T, fn availability.WhoisClientFunc) availability.Probe {
	t.Helper()
	p, err := availability.NewProbe(availability.MethodWHOIS,
		availability.WithWhoisClient(fn),
		availability.WithRateLimitDelay(0),
		availability.WithMaxRetries(0),
		availability.WithResolvers("127.0.0.1:1"),
	)
	require.NoError(t, err)
	return p
}

func TestMiddlewareCountsChecks(t *testing.T) {
	m := New()
	p := m.Middleware(whoisProbe(t, func(_ context.Context, domain string) (string, error) {
		switch domain {
		case "taken.com":
			return "Registrar: Example Registrar", nil
		case "free.com":
			return "No match for FREE.COM", nil
		default:
			return "", errors.New("connection refused")
		}
	}))

	ctx := context.Background()
	assert.Equal(t, availability.StatusTaken, p.Probe(ctx, "taken.com").Status)
	assert.Equal(t, availability.StatusTaken, p.Probe(ctx, "taken.com").Status)
	assert.Equal(t, availability.StatusAvailable, p.Probe(ctx, "free.com").Status)
	assert.Equal(t, availability.StatusError, p.Probe(ctx, "down.com").Status)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checks.WithLabelValues("whois", "taken", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("whois", "available", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("whois", "error", "NETWORK")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight.WithLabelValues("whois")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestMiddlewareDelegates(t *testing.T) {
	inner := whoisProbe(t, func(context.Context, string) (string, error) { return "", nil })
	p := New().Middleware(inner)

	assert.Equal(t, availability.MethodWHOIS, p.Method())
	assert.True(t, p.CanHandle("example.com"))
	assert.False(t, p.CanHandle("example.es"))

	cfg := p.Config()
	cfg.Enabled = false
	p.SetConfig(cfg)
	assert.False(t, inner.Config().Enabled)
}

func TestObserveResolvers(t *testing.T) {
	m := New()
	m.ObserveResolvers([]availability.ResolverStatus{
		{Server: "1.1.1.1:53", Online: true, LatencyMs: 12},
		{Server: "127.0.0.1:1", Online: false},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolvers.WithLabelValues("1.1.1.1:53")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.resolvers.WithLabelValues("127.0.0.1:1")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveResolvers([]availability.ResolverStatus{{Server: "9.9.9.9:53", Online: true}})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `availability_resolver_up{server="9.9.9.9:53"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestWithChecker(t *testing.T) {
	m := New()
	c := availability.New(
		availability.WithMethod(availability.MethodWHOIS),
		availability.WithWhoisClient(availability.WhoisClientFunc(func(context.Context, string) (string, error) {
			return "Registrar: Example Registrar", nil
		})),
		availability.WithRateLimitDelay(0),
		availability.WithResolvers("127.0.0.1:1"),
		availability.WithMiddleware(m.Middleware),
	)

	_, err := c.Check(context.Background(), "a.com", "b.com")
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checks.WithLabelValues("whois", "taken", "")))
}
