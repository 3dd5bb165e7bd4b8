// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	defaultTimeout           = 5 * time.Second
	defaultHybridTimeout     = 2 * defaultTimeout
	defaultWhoisTimeout      = 10 * time.Second
	defaultRetries           = 2
	defaultRetryDelay        = time.Second
	defaultMaxRetryDelay     = 10 * time.Second
	defaultBackoffMultiplier = 2.0
	defaultRateLimitDelay    = time.Second
	defaultCacheTTL          = 5 * time.Minute
	defaultChunkSize         = 5
	defaultChunkDelay        = 100 * time.Millisecond
	defaultQueueCapacity     = 100
	defaultHistorySize       = 1000
	defaultEDNS0Size         = 1232 // Recommended size to prevent IP fragmentation
	defaultResolver          = "8.8.8.8:53"
)

// Checker checks domain availability with DNS, WHOIS or both.
//
// It owns one instance of each probe, a WHOIS rate limiter shared by all
// checks, a result cache, a command queue and the command history.
// A Checker is safe for concurrent use.
type Checker struct {
	method          CheckMethod
	timeout         time.Duration
	maxRetries      int
	retry           RetryConfig
	resolvers       []string
	dnsClient       *dns.Client
	edns0Size       uint16
	whoisClient     WhoisClient
	rateLimitDelay  time.Duration
	unsupportedTLDs []string
	chunkSize       int
	chunkDelay      time.Duration
	cache           Cache
	cacheSet        bool
	cacheTTL        time.Duration
	logger          *zap.Logger
	historySize     int
	queueCapacity   int
	middleware      []func(Probe) Probe

	dns     *DNSProbe
	whois   *WHOISProbe
	hybrid  *HybridResolver
	probe   Probe
	batch   *BatchExecutor
	queue   *Queue
	history *History
}

// New creates a new [Checker] using hybrid checks, the system DNS
// resolvers and the default WHOIS client. Use functional options to
// customize behavior.
//
//	// Default configuration:
//	c := availability.New()
//
//	// Custom configuration:
//	c := availability.New(
//	    availability.WithMethod(availability.MethodDNS),
//	    availability.WithTimeout(3 * time.Second),
//	    availability.WithResolvers("1.1.1.1", "9.9.9.9"),
//	)
func New(opts ...Option) *Checker {
	c := &Checker{
		method:         MethodHybrid,
		maxRetries:     0,
		retry:          DefaultRetryConfig(),
		edns0Size:      defaultEDNS0Size,
		rateLimitDelay: defaultRateLimitDelay,
		chunkSize:      defaultChunkSize,
		chunkDelay:     defaultChunkDelay,
		cacheTTL:       defaultCacheTTL,
		historySize:    defaultHistorySize,
		queueCapacity:  defaultQueueCapacity,
	}
	c.unsupportedTLDs = append(c.unsupportedTLDs, defaultUnsupportedTLDs...)

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	// Initialize cache if not set by option.
	if c.cache == nil && !c.cacheSet {
		c.cache = newMemoryCache(c.cacheTTL)
	}

	if c.resolvers == nil {
		c.resolvers = systemResolvers()
	}

	probeTimeout, hybridTimeout := defaultTimeout, defaultHybridTimeout
	if c.timeout > 0 {
		probeTimeout, hybridTimeout = c.timeout, c.timeout
	}

	// Initialize shared DNS client if not set by WithDNSClient option.
	if c.dnsClient == nil {
		c.dnsClient = &dns.Client{
			Timeout: probeTimeout,
			Net:     "udp",
		}
	}
	if c.whoisClient == nil {
		c.whoisClient = NewWhoisClient()
	}

	cfg := DefaultProbeConfig()
	cfg.Timeout = probeTimeout
	cfg.MaxRetries = c.maxRetries

	c.dns = newDNSProbe(cfg, c.resolvers, c.dnsClient, c.edns0Size, c.logger)
	c.whois = newWHOISProbe(cfg, c.whoisClient, NewRateLimiter(c.rateLimitDelay), c.unsupportedTLDs, c.logger)

	hcfg := cfg
	hcfg.Timeout = hybridTimeout
	c.hybrid = newHybridResolver(hcfg, c.dns, c.whois, c.logger)

	var p Probe
	switch c.method {
	case MethodDNS:
		p = c.dns
	case MethodWHOIS:
		p = c.whois
	default:
		p = c.hybrid
	}
	for _, mw := range c.middleware {
		p = mw(p)
	}
	if c.cache != nil {
		p = newCachingProbe(p, c.cache)
	}
	c.probe = p

	c.history = NewHistory(c.historySize)
	c.queue = NewQueue(c.queueCapacity)
	c.batch = NewBatchExecutor(c.probe, c.retry, c.chunkSize, c.chunkDelay)
	c.batch.history = c.history
	c.batch.logger = c.logger

	return c
}

// Check checks multiple domains and returns one [DomainResult] per
// domain, in input order.
//
// Failures of individual domains, including invalid names, are reported
// in their results. The error is non-nil only when ctx ends before every
// domain was checked; the results are still complete, with the unchecked
// domains marked as errors.
func (c *Checker) Check(ctx context.Context, domains ...string) ([]DomainResult, error) {
	return c.batch.ExecuteBatch(ctx, domains)
}

// CheckOne checks a single domain, retrying per the checker's
// [RetryConfig].
func (c *Checker) CheckOne(ctx context.Context, domain string) (DomainResult, error) {
	return c.batch.NewCommand(domain).Execute(ctx)
}

// CheckTLDs checks name under each of tlds. A nil tlds uses [CommonTLDs].
func (c *Checker) CheckTLDs(ctx context.Context, name string, tlds []string) ([]DomainResult, error) {
	return c.Check(ctx, GenerateMultiTLD(name, tlds)...)
}

// Enqueue adds a check of domain to the checker's queue and returns its
// command. It fails with [ErrQueueFull] when the queue is at capacity.
func (c *Checker) Enqueue(domain string, prio Priority) (*Command, error) {
	cmd := c.batch.NewCommand(domain)
	if err := c.queue.Enqueue(cmd, prio); err != nil {
		return nil, err
	}
	return cmd, nil
}

// RunQueue runs every queued check, highest priority first, and returns
// the results in that order.
func (c *Checker) RunQueue(ctx context.Context) ([]DomainResult, error) {
	return c.batch.ExecuteQueue(ctx, c.queue)
}

// Queue returns the checker's queue.
func (c *Checker) Queue() *Queue { return c.queue }

// ResolverStatus checks the health of all configured DNS resolvers.
// It returns the online/offline status and latency for each resolver.
func (c *Checker) ResolverStatus(ctx context.Context) ([]ResolverStatus, error) {
	return c.dns.ResolverStatus(ctx)
}

// Resolvers returns a copy of the configured DNS resolvers.
func (c *Checker) Resolvers() []string { return c.dns.Resolvers() }

// SetResolvers adds DNS resolvers on a running [Checker].
// It is safe to call concurrently with checks; in-flight checks use their
// own snapshot of the resolver list.
func (c *Checker) SetResolvers(resolvers ...string) { c.dns.SetResolvers(resolvers...) }

// DeleteResolvers removes DNS resolvers on a running [Checker].
// Passing zero or unknown addresses is a no-op.
func (c *Checker) DeleteResolvers(resolvers ...string) { c.dns.DeleteResolvers(resolvers...) }

// SetRateLimitDelay changes the minimum interval between WHOIS queries.
func (c *Checker) SetRateLimitDelay(d time.Duration) { c.whois.SetRateLimitDelay(d) }

// FlushCache clears all cached check results.
func (c *Checker) FlushCache() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

// History returns the log of finished commands.
func (c *Checker) History() *History { return c.history }

// Method returns the check method used by [Checker.Check].
func (c *Checker) Method() CheckMethod { return c.method }

// Probe returns the probe used by [Checker.Check], including caching.
func (c *Checker) Probe() Probe { return c.probe }

// DNS returns the checker's DNS probe.
func (c *Checker) DNS() *DNSProbe { return c.dns }

// WHOIS returns the checker's WHOIS probe.
func (c *Checker) WHOIS() *WHOISProbe { return c.whois }

// Hybrid returns the checker's hybrid resolver.
func (c *Checker) Hybrid() *HybridResolver { return c.hybrid }
