// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// recordTypes are the lookups a [DNSProbe] issues, in the order their
// records are reported.
var recordTypes = []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeMX, dns.TypeNS}

// DNSProbe infers registration from the presence of DNS records.
//
// It resolves A, AAAA, MX and NS records concurrently. Any record means the
// domain is taken. No records at all means it is probably available, which
// is a heuristic: registered domains without DNS delegation look the same.
type DNSProbe struct {
	configHolder

	mu        sync.RWMutex
	resolvers []string
	client    *dns.Client
	edns0Size uint16
	logger    *zap.Logger
}

// lookupOutcome is the result of one record-type lookup.
type lookupOutcome struct {
	qtype  uint16
	values []string
	err    error
	absent error // ErrNXDOMAIN when the name does not exist
}

func newDNSProbe(cfg ProbeConfig, resolvers []string, client *dns.Client, edns0Size uint16, logger *zap.Logger) *DNSProbe {
	p := &DNSProbe{
		resolvers: normalizeResolvers(resolvers),
		client:    client,
		edns0Size: edns0Size,
		logger:    logger,
	}
	p.cfg = cfg
	return p
}

// Method returns [MethodDNS].
func (p *DNSProbe) Method() CheckMethod { return MethodDNS }

// CanHandle reports whether domain is syntactically valid.
func (p *DNSProbe) CanHandle(domain string) bool { return IsValidDomain(domain) }

// Probe checks domain using the probe's configured timeout.
func (p *DNSProbe) Probe(ctx context.Context, domain string) DomainResult {
	return p.probe(ctx, domain, p.Config())
}

// probe runs the four lookups under a single deadline of cfg.Timeout.
func (p *DNSProbe) probe(ctx context.Context, domain string, cfg ProbeConfig) DomainResult {
	start := time.Now()

	if !cfg.Enabled {
		return errorResult(domain, MethodDNS, ErrProbeDisabled, start)
	}
	if err := ValidateDomain(domain); err != nil {
		return errorResult(domain, MethodDNS, err, start)
	}

	resolvers := p.Resolvers()
	if len(resolvers) == 0 {
		return errorResult(domain, MethodDNS, ErrNoResolvers, start)
	}

	name := normalizeDomain(domain)
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	outcomes := make([]lookupOutcome, len(recordTypes))
	var wg sync.WaitGroup
	for i, qtype := range recordTypes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = lookupOutcome{qtype: qtype, err: fmt.Errorf("%w: %v", ErrInternalPanic, r)}
				}
			}()
			outcomes[i] = p.lookup(ctx, name, qtype, resolvers)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		// Pending lookups observe the same ctx and tear down their exchanges.
		return errorResult(domain, MethodDNS, deadlineError(ctx, "DNS query", cfg.Timeout), start)
	case <-done:
	}

	result := dnsVerdict(newResult(domain, MethodDNS), outcomes, start)
	if result.Status == StatusError && ctx.Err() != nil {
		return errorResult(domain, MethodDNS, deadlineError(ctx, "DNS query", cfg.Timeout), start)
	}

	p.logger.Debug("dns probe finished",
		zap.String("domain", domain),
		zap.String("status", string(result.Status)),
		zap.Strings("records", result.DNSRecords),
		zap.Int("nxdomain", countNXDOMAIN(outcomes)),
		zap.Duration("elapsed", result.ExecutionTime),
	)
	return result
}

func countNXDOMAIN(outcomes []lookupOutcome) int {
	n := 0
	for _, o := range outcomes {
		if errors.Is(o.absent, ErrNXDOMAIN) {
			n++
		}
	}
	return n
}

// dnsVerdict turns lookup outcomes into a result.
//
// Records from any lookup win. Otherwise genuine failures make the verdict
// an error, and a clean "nothing found" means available.
func dnsVerdict(r DomainResult, outcomes []lookupOutcome, start time.Time) DomainResult {
	var (
		records  []string
		failures []error
	)
	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, o.err)
			continue
		}
		if len(o.values) > 0 {
			records = append(records, fmt.Sprintf("%s: %s", dns.TypeToString[o.qtype], strings.Join(o.values, ", ")))
		}
	}

	switch {
	case len(records) > 0:
		r.DNSRecords = records
		return r.finish(StatusTaken, start)
	case len(failures) > 0:
		return r.fail(fmt.Errorf("%d of %d DNS lookups failed: %w", len(failures), len(outcomes), failures[0]), start)
	default:
		return r.finish(StatusAvailable, start)
	}
}

// lookup resolves one record type, failing over between resolvers.
//
// NXDOMAIN and empty answers count as "no record". Transport errors and
// other response codes are genuine failures and move on to the next
// resolver.
func (p *DNSProbe) lookup(ctx context.Context, name string, qtype uint16, resolvers []string) lookupOutcome {
	var lastErr error
	for _, server := range resolvers {
		resp, err := queryDNS(ctx, p.client, name, server, qtype, p.edns0Size)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			return lookupOutcome{qtype: qtype, values: recordValues(resp, qtype)}
		case dns.RcodeNameError:
			return lookupOutcome{qtype: qtype, absent: fmt.Errorf("%w: %s %s via %s",
				ErrNXDOMAIN, name, dns.TypeToString[qtype], server)}
		default:
			lastErr = fmt.Errorf("%w: %s %s lookup via %s returned %s",
				ErrNetwork, name, dns.TypeToString[qtype], server, dns.RcodeToString[resp.Rcode])
		}
	}
	return lookupOutcome{qtype: qtype, err: lastErr}
}

// recordValues formats the answers of type qtype in msg.
func recordValues(msg *dns.Msg, qtype uint16) []string {
	var values []string
	for _, rr := range msg.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		switch t := rr.(type) {
		case *dns.A:
			values = append(values, t.A.String())
		case *dns.AAAA:
			values = append(values, t.AAAA.String())
		case *dns.MX:
			values = append(values, fmt.Sprintf("%d %s", t.Preference, strings.TrimSuffix(t.Mx, ".")))
		case *dns.NS:
			values = append(values, strings.TrimSuffix(t.Ns, "."))
		default:
			values = append(values, strings.TrimSuffix(rr.Header().Name, "."))
		}
	}
	return values
}

// queryDNS sends a DNS query for the given domain to the specified server.
// It respects context cancellation and the configured timeout.
func queryDNS(ctx context.Context, client *dns.Client, domain, server string, qtype uint16, edns0Size uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0Size, false)

	server = withDefaultPort(server)

	// Create a channel to receive the result so we can
	// respect context cancellation.
	type dnsResult struct {
		msg *dns.Msg
		err error
	}
	ch := make(chan dnsResult, 1)

	go func() {
		resp, _, err := client.ExchangeContext(ctx, msg, server)
		ch <- dnsResult{msg: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	case result := <-ch:
		if result.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, result.err)
		}
		if result.msg == nil {
			return nil, fmt.Errorf("%w: empty response from %s", ErrNetwork, server)
		}
		return result.msg, nil
	}
}

// withDefaultPort appends port 53 to server if it has none.
func withDefaultPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err != nil {
		return net.JoinHostPort(strings.Trim(server, "[]"), "53")
	}
	return server
}

func normalizeResolvers(resolvers []string) []string {
	out := make([]string, 0, len(resolvers))
	for _, r := range resolvers {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, withDefaultPort(r))
	}
	return out
}

// systemResolvers reads the host resolvers from /etc/resolv.conf,
// falling back to [defaultResolver].
func systemResolvers() []string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return []string{defaultResolver}
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	return servers
}

// Resolvers returns a copy of the currently configured resolvers.
func (p *DNSProbe) Resolvers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	resolvers := make([]string, len(p.resolvers))
	copy(resolvers, p.resolvers)
	return resolvers
}

// SetResolvers adds resolvers that are not configured yet. It is safe to
// call concurrently with running probes; in-flight probes use their own
// snapshot of the resolver list.
func (p *DNSProbe) SetResolvers(resolvers ...string) {
	if len(resolvers) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range normalizeResolvers(resolvers) {
		found := false
		for _, existing := range p.resolvers {
			if existing == r {
				found = true
				break
			}
		}
		if !found {
			p.resolvers = append(p.resolvers, r)
		}
	}
}

// DeleteResolvers removes resolvers by address.
// Passing zero or unknown addresses is a no-op.
func (p *DNSProbe) DeleteResolvers(resolvers ...string) {
	if len(resolvers) == 0 {
		return
	}

	toDelete := make(map[string]struct{}, len(resolvers))
	for _, r := range normalizeResolvers(resolvers) {
		toDelete[r] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var kept []string
	for _, r := range p.resolvers {
		if _, deleteMe := toDelete[r]; !deleteMe {
			kept = append(kept, r)
		}
	}
	p.resolvers = kept
}

// ResolverStatus checks the health of all configured resolvers concurrently.
func (p *DNSProbe) ResolverStatus(ctx context.Context) ([]ResolverStatus, error) {
	resolvers := p.Resolvers()
	if len(resolvers) == 0 {
		return nil, ErrNoResolvers
	}

	ctx, cancel := context.WithTimeout(ctx, p.Config().Timeout)
	defer cancel()

	statuses := make([]ResolverStatus, len(resolvers))
	var wg sync.WaitGroup
	for i, server := range resolvers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					statuses[i] = ResolverStatus{
						Server: server,
						Error:  fmt.Errorf("%w: %v", ErrInternalPanic, r),
					}
				}
			}()
			statuses[i] = checkResolverHealth(ctx, p.client, server, p.edns0Size)
		}()
	}
	wg.Wait()
	return statuses, nil
}

// checkResolverHealth performs a health check on a single resolver by
// asking for the root NS set and measuring the latency.
func checkResolverHealth(ctx context.Context, client *dns.Client, server string, edns0Size uint16) ResolverStatus {
	start := time.Now()

	resp, err := queryDNS(ctx, client, ".", server, dns.TypeNS, edns0Size)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return ResolverStatus{
			Server: server,
			Online: false,
			Error:  err,
		}
	}

	if resp.Rcode != dns.RcodeSuccess {
		return ResolverStatus{
			Server: server,
			Online: false,
			Error:  fmt.Errorf("unexpected response code: %s", dns.RcodeToString[resp.Rcode]),
		}
	}

	return ResolverStatus{
		Server:    server,
		Online:    true,
		LatencyMs: latency,
	}
}
