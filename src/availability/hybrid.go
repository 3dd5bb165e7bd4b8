// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HybridResolver combines a [DNSProbe] and a [WHOISProbe] into one verdict.
//
// Both sub-probes run concurrently with half of the resolver's timeout
// each. WHOIS is treated as authoritative whenever it reaches a verdict;
// DNS fills in when WHOIS cannot decide or fails.
type HybridResolver struct {
	configHolder

	dns    *DNSProbe
	whois  *WHOISProbe
	logger *zap.Logger
}

// subResult is what one side of a hybrid check produced.
type subResult struct {
	res   DomainResult
	valid bool
}

// failed reports whether the side produced no usable answer. An ambiguous
// WHOIS response is a usable answer that happens to be an error verdict.
func (s subResult) failed() bool {
	if !s.valid {
		return true
	}
	return s.res.Status == StatusError && !errors.Is(s.res.Err(), ErrAmbiguousResponse)
}

// cause returns the reason a failed side gave.
func (s subResult) cause() error {
	if s.res.Err() != nil {
		return s.res.Err()
	}
	return ErrTimeout
}

func newHybridResolver(cfg ProbeConfig, dnsProbe *DNSProbe, whoisProbe *WHOISProbe, logger *zap.Logger) *HybridResolver {
	h := &HybridResolver{
		dns:    dnsProbe,
		whois:  whoisProbe,
		logger: logger,
	}
	h.cfg = cfg
	return h
}

// Method returns [MethodHybrid].
func (h *HybridResolver) Method() CheckMethod { return MethodHybrid }

// CanHandle reports whether domain is syntactically valid. TLDs without
// WHOIS are still handled, using DNS alone.
func (h *HybridResolver) CanHandle(domain string) bool { return IsValidDomain(domain) }

// DNS returns the DNS sub-probe.
func (h *HybridResolver) DNS() *DNSProbe { return h.dns }

// WHOIS returns the WHOIS sub-probe.
func (h *HybridResolver) WHOIS() *WHOISProbe { return h.whois }

// Probe checks domain with both sub-probes and reconciles their verdicts.
func (h *HybridResolver) Probe(ctx context.Context, domain string) DomainResult {
	start := time.Now()
	cfg := h.Config()

	if !cfg.Enabled {
		return errorResult(domain, MethodHybrid, ErrProbeDisabled, start)
	}
	if err := ValidateDomain(domain); err != nil {
		return errorResult(domain, MethodHybrid, err, start)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	half := cfg.Timeout / 2
	dnsCfg := h.dns.Config()
	dnsCfg.Timeout = half
	whoisCfg := h.whois.Config()
	whoisCfg.Timeout = half

	dnsCh := make(chan DomainResult, 1)
	go h.run(dnsCh, domain, MethodDNS, func() DomainResult {
		return h.dns.probe(ctx, domain, dnsCfg)
	})

	var (
		dnsSide, whoisSide subResult
		pending            = 1
		whoisCh            chan DomainResult
	)
	if h.whois.CanHandle(domain) {
		whoisCh = make(chan DomainResult, 1)
		pending++
		go h.run(whoisCh, domain, MethodWHOIS, func() DomainResult {
			return h.whois.probe(ctx, domain, whoisCfg)
		})
	} else {
		whoisSide = subResult{
			res:   errorResult(domain, MethodWHOIS, fmt.Errorf("%w: %s", ErrUnsupportedTLD, tldOf(domain)), start),
			valid: true,
		}
	}

Wait:
	for pending > 0 {
		select {
		case res := <-dnsCh:
			dnsSide = subResult{res: res, valid: true}
			pending--
		case res := <-whoisCh:
			whoisSide = subResult{res: res, valid: true}
			pending--
		case <-ctx.Done():
			// Keep whatever already settled; the rest is abandoned and
			// torn down through ctx.
			break Wait
		}
	}

	if !dnsSide.valid {
		dnsSide.res = errorResult(domain, MethodDNS, deadlineError(ctx, "hybrid DNS check", cfg.Timeout), start)
	}
	if !whoisSide.valid {
		whoisSide.res = errorResult(domain, MethodWHOIS, deadlineError(ctx, "hybrid WHOIS check", cfg.Timeout), start)
	}

	result := reconcile(domain, dnsSide, whoisSide, start)
	h.logger.Debug("hybrid probe finished",
		zap.String("domain", domain),
		zap.String("status", string(result.Status)),
		zap.String("dns", string(dnsSide.res.Status)),
		zap.String("whois", string(whoisSide.res.Status)),
		zap.Duration("elapsed", result.ExecutionTime),
	)
	return result
}

// run executes one sub-probe, converting a panic into a failed result.
func (h *HybridResolver) run(ch chan<- DomainResult, domain string, method CheckMethod, probe func() DomainResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("sub-probe panicked",
				zap.String("domain", domain),
				zap.String("method", string(method)),
				zap.Any("panic", r),
			)
			ch <- errorResult(domain, method, fmt.Errorf("%w: %v", ErrInternalPanic, r), start)
		}
	}()
	ch <- probe()
}

// reconcile merges the two sides into the hybrid verdict.
//
//  1. Both failed: error wrapping [ErrBothFailed].
//  2. Both answered: WHOIS wins unless its verdict is an error, in which
//     case DNS decides.
//  3. One answered: its verdict, with the other side's failure noted.
//
// DNS records and WHOIS data are carried over whichever side decided.
func reconcile(domain string, dnsSide, whoisSide subResult, start time.Time) DomainResult {
	r := newResult(domain, MethodHybrid)
	r.DNSRecords = dnsSide.res.DNSRecords
	r.WhoisData = whoisSide.res.WhoisData

	dnsFailed, whoisFailed := dnsSide.failed(), whoisSide.failed()

	switch {
	case dnsFailed && whoisFailed:
		return r.fail(fmt.Errorf("%w (DNS: %v; WHOIS: %v)", ErrBothFailed, dnsSide.cause(), whoisSide.cause()), start)

	case !dnsFailed && !whoisFailed:
		if whoisSide.res.Status != StatusError {
			return r.finish(whoisSide.res.Status, start)
		}
		r.Warning = fmt.Sprintf("WHOIS inconclusive: %v", whoisSide.res.Err())
		return r.finish(dnsSide.res.Status, start)

	case whoisFailed:
		r.Warning = fmt.Sprintf("WHOIS check failed: %v", whoisSide.cause())
		return r.finish(dnsSide.res.Status, start)

	default:
		if whoisSide.res.Status == StatusError {
			return r.fail(fmt.Errorf("%w (DNS check failed: %v)", whoisSide.res.Err(), dnsSide.cause()), start)
		}
		r.Warning = fmt.Sprintf("DNS check failed: %v", dnsSide.cause())
		return r.finish(whoisSide.res.Status, start)
	}
}
