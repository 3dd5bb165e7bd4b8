// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxWhoisBackoff caps the delay between WHOIS query retries.
const maxWhoisBackoff = 5 * time.Second

// defaultUnsupportedTLDs are registries without a public port-43 service.
var defaultUnsupportedTLDs = []string{"es", "gr", "vn", "pk", "ph", "py", "ni", "sv", "er"}

// WHOISProbe classifies domains from WHOIS response text.
//
// All queries issued through one probe share its [RateLimiter], so a batch
// of domains is paced as a whole rather than per domain.
type WHOISProbe struct {
	configHolder

	client  WhoisClient
	limiter *RateLimiter
	logger  *zap.Logger

	mu          sync.RWMutex
	unsupported map[string]struct{}
}

func newWHOISProbe(cfg ProbeConfig, client WhoisClient, limiter *RateLimiter, unsupported []string, logger *zap.Logger) *WHOISProbe {
	p := &WHOISProbe{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
	p.cfg = cfg
	p.SetUnsupportedTLDs(unsupported...)
	return p
}

// Method returns [MethodWHOIS].
func (p *WHOISProbe) Method() CheckMethod { return MethodWHOIS }

// CanHandle reports whether domain is valid and its TLD offers WHOIS.
func (p *WHOISProbe) CanHandle(domain string) bool {
	if !IsValidDomain(domain) {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, unsupported := p.unsupported[tldOf(domain)]
	return !unsupported
}

// SetUnsupportedTLDs replaces the TLDs the probe declines.
// TLDs may be given with or without their leading dot.
func (p *WHOISProbe) SetUnsupportedTLDs(tlds ...string) {
	set := make(map[string]struct{}, len(tlds))
	for _, tld := range tlds {
		tld = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tld), "."))
		if tld != "" {
			set[tld] = struct{}{}
		}
	}
	p.mu.Lock()
	p.unsupported = set
	p.mu.Unlock()
}

// SetRateLimitDelay sets the minimum interval between WHOIS queries.
func (p *WHOISProbe) SetRateLimitDelay(d time.Duration) {
	p.limiter.SetInterval(d)
}

// RateLimitDelay returns the minimum interval between WHOIS queries.
func (p *WHOISProbe) RateLimitDelay() time.Duration {
	return p.limiter.Interval()
}

// Probe checks domain using the probe's configured timeout.
func (p *WHOISProbe) Probe(ctx context.Context, domain string) DomainResult {
	return p.probe(ctx, domain, p.Config())
}

// probe queries WHOIS, retrying transport failures up to cfg.MaxRetries
// times, and classifies the first response received.
func (p *WHOISProbe) probe(ctx context.Context, domain string, cfg ProbeConfig) DomainResult {
	start := time.Now()

	if !cfg.Enabled {
		return errorResult(domain, MethodWHOIS, ErrProbeDisabled, start)
	}
	if err := ValidateDomain(domain); err != nil {
		return errorResult(domain, MethodWHOIS, err, start)
	}
	if !p.CanHandle(domain) {
		return errorResult(domain, MethodWHOIS, fmt.Errorf("%w: %s", ErrUnsupportedTLD, tldOf(domain)), start)
	}

	name := normalizeDomain(domain)
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := whoisBackoff(cfg, attempt)
			p.logger.Debug("retrying whois query",
				zap.String("domain", domain),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return errorResult(domain, MethodWHOIS, lastErr, start)
			case <-time.After(backoff):
			}
		}

		raw, err := p.query(ctx, name, cfg.Timeout)
		if err == nil {
			return p.verdict(domain, raw, start)
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	p.logger.Warn("whois query failed",
		zap.String("domain", domain),
		zap.Int("attempts", cfg.MaxRetries+1),
		zap.Error(lastErr),
	)
	return errorResult(domain, MethodWHOIS, lastErr, start)
}

// query waits for a rate limiter slot and sends one WHOIS query bounded
// by timeout.
func (p *WHOISProbe) query(ctx context.Context, domain string, timeout time.Duration) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := p.client.Query(qctx, domain)
	switch {
	case err == nil:
		return raw, nil
	case qctx.Err() != nil:
		return "", deadlineError(qctx, "WHOIS query", timeout)
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrNetwork):
		return "", err
	default:
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}

// verdict classifies raw and attaches extracted registration data.
func (p *WHOISProbe) verdict(domain, raw string, start time.Time) DomainResult {
	r := newResult(domain, MethodWHOIS)
	status, err := classifyWhois(raw)
	if err != nil {
		return r.fail(err, start)
	}
	if status == StatusTaken {
		r.WhoisData = extractWhoisData(raw)
	}
	return r.finish(status, start)
}

// whoisBackoff returns the delay before retry number attempt (1-based).
func whoisBackoff(cfg ProbeConfig, attempt int) time.Duration {
	delay := cfg.RetryDelay
	if cfg.UseExponentialBackoff {
		delay = cfg.RetryDelay << min(attempt-1, 16)
	}
	return min(delay, maxWhoisBackoff)
}
