// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a [Checker].
type Option func(*Checker)

// WithMethod selects the probe used by [Checker.Check] and
// [Checker.CheckOne]. The default is [MethodHybrid].
// Unknown methods are ignored.
func WithMethod(m CheckMethod) Option {
	return func(c *Checker) {
		switch m {
		case MethodDNS, MethodWHOIS, MethodHybrid:
			c.method = m
		}
	}
}

// WithTimeout sets the timeout of every probe. The hybrid resolver gives
// each of its sub-probes half of it.
//
// By default the DNS and WHOIS probes time out after 5 seconds and the
// hybrid resolver after 10 seconds, so each side of a hybrid check also
// gets 5 seconds.
//
// Non-positive durations are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets how many times the WHOIS probe retries a failed
// query inside a single check. The default is 0: checks are retried as a
// whole by their command, see [WithRetryConfig]. Negative values mean 0.
func WithMaxRetries(n int) Option {
	return func(c *Checker) { c.maxRetries = max(n, 0) }
}

// WithRetryConfig sets how commands retry failed checks.
// The default is [DefaultRetryConfig].
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Checker) {
		c.retry = rc.normalize()
	}
}

// WithResolvers replaces the DNS resolvers. Addresses without a port use
// port 53. By default the resolvers of /etc/resolv.conf are used, or
// 8.8.8.8 if it cannot be read.
func WithResolvers(resolvers ...string) Option {
	return func(c *Checker) {
		c.resolvers = resolvers
	}
}

// WithDNSClient sets a custom [dns.Client] for all DNS operations.
// This allows full control over the transport configuration, including:
//
//   - TCP transport (Net: "tcp")
//   - DNS-over-TLS (Net: "tcp-tls" with TLSConfig)
//   - Custom Dialer for proxy or interface binding
//
// The probe deadline still applies through the query context.
//
// Passing nil is a no-op and the default UDP client will be used.
func WithDNSClient(client *dns.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.dnsClient = client
		}
	}
}

// WithEDNS0Size sets the EDNS0 UDP buffer size.
// The default is 1232 bytes, which is the recommended size to prevent
// IP fragmentation over UDP.
//
// See: https://dnsflagday.net/2020/
func WithEDNS0Size(size uint16) Option {
	return func(c *Checker) {
		if size > 0 {
			c.edns0Size = size
		}
	}
}

// WithWhoisClient replaces the WHOIS transport. Passing nil is a no-op.
func WithWhoisClient(client WhoisClient) Option {
	return func(c *Checker) {
		if client != nil {
			c.whoisClient = client
		}
	}
}

// WithRateLimitDelay sets the minimum interval between WHOIS queries.
// The default is 1 second. Zero disables rate limiting.
func WithRateLimitDelay(d time.Duration) Option {
	return func(c *Checker) {
		c.rateLimitDelay = max(d, 0)
	}
}

// WithUnsupportedTLDs replaces the TLDs the WHOIS probe declines.
// Hybrid checks of such domains rely on DNS alone.
func WithUnsupportedTLDs(tlds ...string) Option {
	return func(c *Checker) {
		c.unsupportedTLDs = tlds
	}
}

// WithChunkSize sets how many domains of a batch are checked at once.
// The default is 5.
func WithChunkSize(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithChunkDelay sets the pause between batch chunks.
// The default is 100 milliseconds.
func WithChunkDelay(d time.Duration) Option {
	return func(c *Checker) {
		c.chunkDelay = max(d, 0)
	}
}

// WithCache sets a custom [Cache] implementation.
// By default, the checker uses an in-memory cache with a 5-minute TTL.
//
// Pass nil to disable caching entirely.
func WithCache(cache Cache) Option {
	return func(c *Checker) {
		c.cache = cache
		c.cacheSet = true
	}
}

// WithCacheTTL sets the TTL for the built-in in-memory cache.
// This has no effect if a custom cache is set via [WithCache].
// The default is 5 minutes.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Checker) {
		c.cacheTTL = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHistorySize sets how many finished commands [Checker.History]
// keeps. The default is 1000; zero disables the history.
func WithHistorySize(n int) Option {
	return func(c *Checker) {
		c.historySize = max(n, 0)
	}
}

// WithQueueCapacity sets the capacity of the checker's queue.
// The default is 100.
func WithQueueCapacity(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithMiddleware wraps the selected probe, outermost last. Middleware
// sees every probe attempt, including retries, but not cache hits.
func WithMiddleware(mw ...func(Probe) Probe) Option {
	return func(c *Checker) {
		c.middleware = append(c.middleware, mw...)
	}
}
