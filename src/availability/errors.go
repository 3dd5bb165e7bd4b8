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
)

// Sentinel errors for the availability package.
var (
	// ErrInvalidDomain is returned when a domain name fails validation.
	// Checks failing with this error are never retried.
	ErrInvalidDomain = errors.New("availability: invalid domain name")

	// ErrNetwork is returned when a transport-level failure occurs, such as
	// an unreachable resolver or WHOIS server.
	ErrNetwork = errors.New("availability: network failure")

	// ErrTimeout is returned when a probe exceeds its deadline.
	ErrTimeout = errors.New("availability: timeout")

	// ErrAmbiguousResponse is returned when a WHOIS response matches neither
	// the available nor the taken phrase lists and is too short to be
	// treated as registration data.
	ErrAmbiguousResponse = errors.New("availability: ambiguous WHOIS response")

	// ErrBothFailed is returned by the hybrid resolver when neither the DNS
	// nor the WHOIS probe produced a usable result.
	ErrBothFailed = errors.New("availability: Both DNS and WHOIS queries failed")

	// ErrNXDOMAIN marks a DNS lookup answered with NXDOMAIN. The DNS probe
	// counts it as "no record", never as a failure.
	ErrNXDOMAIN = errors.New("availability: nxdomain")

	// ErrUnsupportedTLD is returned when the WHOIS probe is asked to query
	// a TLD that does not offer a public WHOIS service.
	ErrUnsupportedTLD = errors.New("availability: TLD not supported by WHOIS")

	// ErrProbeDisabled is returned when a probe is disabled through its config.
	ErrProbeDisabled = errors.New("availability: probe disabled")

	// ErrNoResolvers is returned when no DNS resolvers are configured.
	ErrNoResolvers = errors.New("availability: no DNS resolvers configured")

	// ErrInternalPanic is returned when an internal panic is recovered during execution.
	ErrInternalPanic = errors.New("availability: internal panic recovered")

	// ErrNoStrategy is returned when a command is executed without a probe.
	ErrNoStrategy = errors.New("availability: command has no probe")

	// ErrCommandTerminated is returned when a command that already left the
	// pending state is executed again. Use [Command.Clone] to run it again.
	ErrCommandTerminated = errors.New("availability: command already executed")

	// ErrQueueFull is returned when a command is enqueued into a full [Queue].
	ErrQueueFull = errors.New("availability: queue is full")
)

// ErrorKind classifies an error into the failure taxonomy used by the
// retry policy and by callers rendering results.
type ErrorKind string

// Error kinds.
const (
	KindNone           ErrorKind = ""
	KindInvalidFormat  ErrorKind = "INVALID_FORMAT"
	KindNetwork        ErrorKind = "NETWORK"
	KindTimeout        ErrorKind = "TIMEOUT"
	KindParseAmbiguous ErrorKind = "PARSE_AMBIGUOUS"
	KindBothFailed     ErrorKind = "BOTH_FAILED"
	KindUnsupported    ErrorKind = "UNSUPPORTED"
	KindInternal       ErrorKind = "INTERNAL"
)

// KindOf maps err to its [ErrorKind]. Errors that do not wrap one of the
// package sentinels are treated as network failures.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidDomain):
		return KindInvalidFormat
	case errors.Is(err, ErrBothFailed):
		return KindBothFailed
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrAmbiguousResponse):
		return KindParseAmbiguous
	case errors.Is(err, ErrUnsupportedTLD), errors.Is(err, ErrProbeDisabled):
		return KindUnsupported
	case errors.Is(err, ErrInternalPanic), errors.Is(err, ErrNoStrategy):
		return KindInternal
	default:
		return KindNetwork
	}
}

// retryable reports whether a failed attempt with err is worth repeating.
func retryable(err error) bool {
	switch KindOf(err) {
	case KindInvalidFormat, KindUnsupported:
		return false
	default:
		return true
	}
}

// deadlineError describes why ctx ended while waiting for what.
// Deadline expiry wraps [ErrTimeout]; caller cancellation wraps
// [context.Canceled].
func deadlineError(ctx context.Context, what string, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s cancelled: %w", what, context.Canceled)
	}
	return fmt.Errorf("%w: %s timeout after %dms", ErrTimeout, what, timeout.Milliseconds())
}
