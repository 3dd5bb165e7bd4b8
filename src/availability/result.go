// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import "time"

// Status is the availability verdict of a domain.
type Status string

const (
	// StatusAvailable means no registration evidence was found.
	StatusAvailable Status = "available"

	// StatusTaken means the domain appears to be registered.
	StatusTaken Status = "taken"

	// StatusError means no verdict could be reached. The result's Error
	// field explains why.
	StatusError Status = "error"

	// StatusChecking is a placeholder used by callers before a result
	// exists. Probes never return it.
	StatusChecking Status = "checking"
)

// CheckMethod identifies which component produced a verdict.
type CheckMethod string

const (
	MethodDNS    CheckMethod = "dns"
	MethodWHOIS  CheckMethod = "whois"
	MethodHybrid CheckMethod = "hybrid"
)

// WhoisData holds registration details extracted from a WHOIS response.
type WhoisData struct {
	Registrar      string     `json:"registrar,omitempty"`
	CreationDate   *time.Time `json:"creationDate,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// DomainResult represents the outcome of checking a single domain.
//
// A DomainResult is a value: probes build it once at the end of their
// execution and nothing in this package modifies it afterwards. A retried
// check yields a new DomainResult with a higher RetryCount.
type DomainResult struct {
	// Domain is the domain name that was checked, as supplied by the caller.
	Domain string `json:"domain"`

	// BaseDomain is Domain without its last label.
	BaseDomain string `json:"baseDomain"`

	// TLD is the last label including its leading dot, or empty for
	// single-label input.
	TLD string `json:"tld"`

	// Status is the availability verdict.
	Status Status `json:"status"`

	// CheckMethod is the component that produced Status.
	CheckMethod CheckMethod `json:"checkMethod"`

	// LastChecked is when the check finished.
	LastChecked time.Time `json:"lastChecked"`

	// ExecutionTime is how long the check took.
	ExecutionTime time.Duration `json:"executionTime"`

	// RetryCount is the number of retries made before this result.
	RetryCount int `json:"retryCount"`

	// Error is set if and only if Status is [StatusError].
	Error string `json:"error,omitempty"`

	// Warning carries diagnostics that did not prevent a verdict, such as
	// one side of a hybrid check failing.
	Warning string `json:"warning,omitempty"`

	// DNSRecords lists "<TYPE>: <values>" entries when DNS found records.
	DNSRecords []string `json:"dnsRecords,omitempty"`

	// WhoisData is set when a WHOIS response contained registration details.
	WhoisData *WhoisData `json:"whoisData,omitempty"`

	err error
}

// Err returns the underlying error of a failed check, or nil.
// The returned error wraps one of the package sentinel errors.
func (r DomainResult) Err() error {
	return r.err
}

// Kind returns the [ErrorKind] of the result's underlying error.
func (r DomainResult) Kind() ErrorKind {
	return KindOf(r.err)
}

// Done reports whether r holds a final verdict.
func (r DomainResult) Done() bool {
	return r.Status == StatusAvailable || r.Status == StatusTaken || r.Status == StatusError
}

// Placeholder returns a [StatusChecking] result for domain, for display
// purposes before a check completes.
func Placeholder(domain string, method CheckMethod) DomainResult {
	r := newResult(domain, method)
	r.Status = StatusChecking
	return r
}

// newResult creates a result for domain with the derived name parts filled in.
func newResult(domain string, method CheckMethod) DomainResult {
	base, tld := SplitDomain(domain)
	return DomainResult{
		Domain:      domain,
		BaseDomain:  base,
		TLD:         tld,
		CheckMethod: method,
	}
}

// finish stamps the verdict and timing onto r.
func (r DomainResult) finish(status Status, start time.Time) DomainResult {
	r.Status = status
	r.LastChecked = time.Now()
	r.ExecutionTime = max(r.LastChecked.Sub(start), 0)
	return r
}

// fail stamps an error verdict onto r.
func (r DomainResult) fail(err error, start time.Time) DomainResult {
	r.err = err
	r.Error = err.Error()
	return r.finish(StatusError, start)
}

// errorResult is a shorthand for a fresh failed result.
func errorResult(domain string, method CheckMethod, err error, start time.Time) DomainResult {
	return newResult(domain, method).fail(err, start)
}

// ResolverStatus represents the health status of a single DNS resolver.
type ResolverStatus struct {
	// Server is the resolver address (host:port).
	Server string `json:"server"`

	// Online indicates whether the resolver is responding to queries.
	Online bool `json:"online"`

	// LatencyMs is the round-trip time in milliseconds.
	// Only meaningful when Online is true.
	LatencyMs int64 `json:"latencyMs"`

	// Error is non-nil if the health check failed.
	Error error `json:"-"`
}
