// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RetryConfig controls how a [Command] retries a failed probe.
// It is a value; every command holds its own copy.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// UseExponentialBackoff multiplies the delay by BackoffMultiplier
	// after each retry. When false every retry waits InitialDelay.
	UseExponentialBackoff bool

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	// BackoffMultiplier is the growth factor of exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns 2 retries starting at 1s, doubling up to 10s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:            defaultRetries,
		InitialDelay:          defaultRetryDelay,
		UseExponentialBackoff: true,
		MaxDelay:              defaultMaxRetryDelay,
		BackoffMultiplier:     defaultBackoffMultiplier,
	}
}

// Delay returns the wait before retry number attempt, counting from 1.
func (rc RetryConfig) Delay(attempt int) time.Duration {
	if attempt < 1 || rc.InitialDelay <= 0 {
		return 0
	}

	delay := rc.InitialDelay
	if rc.UseExponentialBackoff {
		mult := rc.BackoffMultiplier
		if mult < 1 {
			mult = defaultBackoffMultiplier
		}
		scaled := float64(rc.InitialDelay) * math.Pow(mult, float64(attempt-1))
		if scaled >= math.MaxInt64 {
			delay = time.Duration(math.MaxInt64)
		} else {
			delay = time.Duration(scaled)
		}
	}

	if rc.MaxDelay > 0 {
		delay = min(delay, rc.MaxDelay)
	}
	return delay
}

// normalize clamps out-of-range fields.
func (rc RetryConfig) normalize() RetryConfig {
	rc.MaxRetries = max(rc.MaxRetries, 0)
	rc.InitialDelay = max(rc.InitialDelay, 0)
	rc.MaxDelay = max(rc.MaxDelay, 0)
	return rc
}

// CommandState is the lifecycle state of a [Command].
type CommandState int32

const (
	CommandPending CommandState = iota
	CommandExecuting
	CommandCompleted
	CommandFailed
)

func (s CommandState) String() string {
	switch s {
	case CommandPending:
		return "pending"
	case CommandExecuting:
		return "executing"
	case CommandCompleted:
		return "completed"
	case CommandFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether s is Completed or Failed.
func (s CommandState) Terminal() bool {
	return s == CommandCompleted || s == CommandFailed
}

// Command checks one domain with one probe, retrying failures.
//
// A command runs once: it moves from pending to executing to completed or
// failed and never back. Use [Command.Clone] to check the same domain
// again.
type Command struct {
	id       string
	domain   string
	probe    Probe
	retry    RetryConfig
	priority Priority
	history  *History

	state atomic.Int32
}

// NewCommand creates a pending command checking domain with probe.
// The command's priority defaults to the probe's configured priority.
func NewCommand(domain string, probe Probe, retry RetryConfig) *Command {
	cmd := &Command{
		id:       uuid.New().String(),
		domain:   domain,
		probe:    probe,
		retry:    retry.normalize(),
		priority: PriorityNormal,
	}
	if probe != nil {
		cmd.priority = probe.Config().Priority
	}
	return cmd
}

// ID returns the unique identifier of the command.
func (c *Command) ID() string { return c.id }

// Domain returns the domain the command checks.
func (c *Command) Domain() string { return c.domain }

// State returns the current lifecycle state.
func (c *Command) State() CommandState { return CommandState(c.state.Load()) }

// Priority returns the queue priority of the command.
func (c *Command) Priority() Priority { return c.priority }

// RetryConfig returns the command's retry configuration.
func (c *Command) RetryConfig() RetryConfig { return c.retry }

// Validate checks the domain before any network call.
func (c *Command) Validate() error {
	return validateCommandDomain(c.domain)
}

// Clone returns a pending copy of c with a new ID.
func (c *Command) Clone() *Command {
	return &Command{
		id:       uuid.New().String(),
		domain:   c.domain,
		probe:    c.probe,
		retry:    c.retry,
		priority: c.priority,
		history:  c.history,
	}
}

// Execute runs the probe, retrying failed verdicts up to MaxRetries times.
//
// Expected failures are reported in the returned [DomainResult]. The error
// is non-nil only for misuse: a command without a probe ([ErrNoStrategy])
// or one that has already run ([ErrCommandTerminated]).
//
// Invalid domains, unsupported TLDs and disabled probes are not retried.
// Retries stop early when ctx is done; the last result is returned.
func (c *Command) Execute(ctx context.Context) (DomainResult, error) {
	if c.probe == nil {
		return DomainResult{}, ErrNoStrategy
	}
	if !c.state.CompareAndSwap(int32(CommandPending), int32(CommandExecuting)) {
		return DomainResult{}, fmt.Errorf("%w: %s is %s", ErrCommandTerminated, c.id, c.State())
	}

	start := time.Now()
	method := c.probe.Method()

	if err := c.Validate(); err != nil {
		result := errorResult(c.domain, method, err, start)
		c.complete(CommandFailed, start, 0)
		return result, nil
	}

	var result DomainResult
	attempts := 0
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.complete(CommandFailed, start, attempts)
				return result, nil
			case <-time.After(c.retry.Delay(attempt)):
			}
		}

		result = c.invoke(ctx, method)
		result.RetryCount = attempt
		attempts++

		if result.Status != StatusError {
			c.complete(CommandCompleted, start, attempts)
			return result, nil
		}
		if !retryable(result.Err()) || ctx.Err() != nil {
			break
		}
	}

	c.complete(CommandFailed, start, attempts)
	return result, nil
}

// invoke runs one probe attempt, converting a panic into an error result.
func (c *Command) invoke(ctx context.Context, method CheckMethod) (result DomainResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(c.domain, method, fmt.Errorf("%w: %v", ErrInternalPanic, r), start)
		}
	}()
	return c.probe.Probe(ctx, c.domain)
}

// complete moves the command to its terminal state and records it.
func (c *Command) complete(state CommandState, start time.Time, attempts int) {
	c.state.Store(int32(state))
	if c.history != nil {
		c.history.record(HistoryEntry{
			ID:       c.id,
			Domain:   c.domain,
			State:    state,
			Attempts: attempts,
			Started:  start,
			Duration: time.Since(start),
		})
	}
}
