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
)

// Probe checks a single domain with one strategy.
//
// Implementations in this package are [DNSProbe], [WHOISProbe] and
// [HybridResolver]. Probe never returns [StatusChecking] and never panics
// for expected failures such as invalid input, network errors or timeouts;
// those are encoded as [StatusError] results.
type Probe interface {
	// Probe checks domain and returns the verdict.
	Probe(ctx context.Context, domain string) DomainResult

	// CanHandle reports whether the probe is able to check domain.
	CanHandle(domain string) bool

	// Method returns the check method stamped on results.
	Method() CheckMethod

	// Config returns a snapshot of the probe configuration.
	Config() ProbeConfig

	// SetConfig replaces the probe configuration. Checks already in
	// flight keep using their snapshot.
	SetConfig(cfg ProbeConfig)
}

// Priority orders queued work.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ProbeConfig holds the tunables shared by all probes.
type ProbeConfig struct {
	// Timeout bounds one probe execution (one query attempt for WHOIS).
	Timeout time.Duration

	// MaxRetries is the number of query retries the WHOIS probe makes
	// after transport failures. DNS and hybrid probes do not retry
	// internally; wrap them in a [Command] instead.
	MaxRetries int

	// RetryDelay is the base delay between WHOIS query retries.
	RetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after every retry.
	UseExponentialBackoff bool

	// Priority is the default queue priority for commands using the probe.
	Priority Priority

	// Enabled turns the probe on or off. A disabled probe fails every
	// check with [ErrProbeDisabled].
	Enabled bool
}

// DefaultProbeConfig returns the configuration probes start with.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Timeout:               defaultTimeout,
		MaxRetries:            defaultRetries,
		RetryDelay:            defaultRetryDelay,
		UseExponentialBackoff: true,
		Priority:              PriorityNormal,
		Enabled:               true,
	}
}

// configHolder stores a [ProbeConfig] that can be swapped while probes run.
type configHolder struct {
	mu  sync.RWMutex
	cfg ProbeConfig
}

// Config returns a snapshot of the probe configuration.
func (h *configHolder) Config() ProbeConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// SetConfig replaces the probe configuration.
// A non-positive Timeout keeps the current one and a negative MaxRetries
// is clamped to zero.
func (h *configHolder) SetConfig(cfg ProbeConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cfg.Timeout <= 0 {
		cfg.Timeout = h.cfg.Timeout
	}
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	cfg.RetryDelay = max(cfg.RetryDelay, 0)
	h.cfg = cfg
}

// NewProbe creates the probe for method, configured from opts the same way
// [New] configures a [Checker].
func NewProbe(method CheckMethod, opts ...Option) (Probe, error) {
	c := New(append(opts, WithMethod(method))...)
	switch method {
	case MethodDNS:
		return c.dns, nil
	case MethodWHOIS:
		return c.whois, nil
	case MethodHybrid:
		return c.hybrid, nil
	default:
		return nil, fmt.Errorf("availability: unknown check method %q", method)
	}
}

// Compile-time interface checks.
var (
	_ Probe = (*DNSProbe)(nil)
	_ Probe = (*WHOISProbe)(nil)
	_ Probe = (*HybridResolver)(nil)
)
