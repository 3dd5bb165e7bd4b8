// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package availability checks whether domain names are registered.
//
// It combines two independent and unreliable signals into one verdict:
// the presence of DNS records, and the text of a WHOIS response. Neither
// is authoritative. A registered domain without delegation has no DNS
// records, and WHOIS servers answer in hundreds of formats, so every
// verdict is a best effort.
//
// # Probes
//
// A [Probe] checks one domain with one strategy and always returns a
// [DomainResult]; expected failures such as invalid input, network errors
// and timeouts are encoded as [StatusError] results, never as panics.
//
//   - [DNSProbe] resolves A, AAAA, MX and NS concurrently. Any record means
//     taken, nothing at all means available.
//   - [WHOISProbe] sends one rate-limited WHOIS query per attempt and
//     classifies the response with fixed phrase lists and a length
//     heuristic. Registrar and dates are extracted when present.
//   - [HybridResolver] runs both concurrently with half of its timeout each
//     and reconciles them. WHOIS wins when it reaches a verdict; DNS fills
//     in otherwise.
//
// # Commands and Batches
//
// A [Command] wraps a probe with pre-flight validation and retries with
// backoff. It runs once, moving from pending to executing to completed or
// failed. [BatchExecutor] runs one command per domain in chunks of five,
// pausing between chunks, and returns results in input order. A [Queue]
// holds commands by priority and rejects work once full.
//
// # Quick Start
//
//	c := availability.New()
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
//	defer cancel()
//
//	results, err := c.CheckTLDs(ctx, "example", []string{"com", "io", "dev"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, r := range results {
//	    fmt.Printf("%-20s %-9s %s\n", r.Domain, r.Status, r.Error)
//	}
//
// # Configuration
//
//	c := availability.New(
//	    // DNS only, no WHOIS traffic.
//	    availability.WithMethod(availability.MethodDNS),
//
//	    // Query these resolvers instead of /etc/resolv.conf.
//	    availability.WithResolvers("1.1.1.1", "9.9.9.9:53"),
//
//	    // At most one WHOIS query every two seconds.
//	    availability.WithRateLimitDelay(2 * time.Second),
//
//	    // Retry failed checks once after 500ms.
//	    availability.WithRetryConfig(availability.RetryConfig{
//	        MaxRetries:   1,
//	        InitialDelay: 500 * time.Millisecond,
//	    }),
//	)
//
// Probe settings can be changed while checks run:
//
//	cfg := c.WHOIS().Config()
//	cfg.Timeout = 8 * time.Second
//	c.WHOIS().SetConfig(cfg)
//
// # Errors
//
// Failed results carry an error wrapping one of the package sentinels,
// available through [DomainResult.Err]. [KindOf] maps it to an
// [ErrorKind]:
//
//	ErrInvalidDomain     -> INVALID_FORMAT (never retried)
//	ErrNetwork           -> NETWORK
//	ErrTimeout           -> TIMEOUT
//	ErrAmbiguousResponse -> PARSE_AMBIGUOUS
//	ErrBothFailed        -> BOTH_FAILED (hybrid only)
//	ErrUnsupportedTLD    -> UNSUPPORTED (never retried)
//
// # Custom Cache
//
// Available and taken verdicts are cached for five minutes in memory.
// Implement [Cache] to plug in another backend:
//
//	type Cache interface {
//	    Get(key string) (DomainResult, bool)
//	    Set(key string, val DomainResult)
//	    Flush()
//	}
//
// Pass a nil value to [WithCache] to disable caching entirely.
package availability
