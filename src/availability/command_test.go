// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProbe is a Probe whose verdicts come from fn.
type fakeProbe struct {
	configHolder
	method CheckMethod
	calls  atomic.Int32
	fn     func(call int, domain string) DomainResult
}

func newFakeProbe(fn func(call int, domain string) DomainResult) *fakeProbe {
	p := &fakeProbe{method: MethodDNS, fn: fn}
	p.cfg = DefaultProbeConfig()
	return p
}

func (p *fakeProbe) Probe(_ context.Context, domain string) DomainResult {
	return p.fn(int(p.calls.Add(1)), domain)
}

func (p *fakeProbe) CanHandle(domain string) bool { return IsValidDomain(domain) }
func (p *fakeProbe) Method() CheckMethod          { return p.method }

func verdict(domain string, s Status) DomainResult {
	return newResult(domain, MethodDNS).finish(s, time.Now())
}

func failure(domain string, err error) DomainResult {
	return errorResult(domain, MethodDNS, err, time.Now())
}

func fastRetry(n int) RetryConfig {
	return RetryConfig{
		MaxRetries:            n,
		InitialDelay:          time.Millisecond,
		UseExponentialBackoff: true,
		MaxDelay:              5 * time.Millisecond,
		BackoffMultiplier:     2,
	}
}

func TestCommandRetryBound(t *testing.T) {
	for maxRetries := range 4 {
		t.Run(fmt.Sprintf("max=%d", maxRetries), func(t *testing.T) {
			p := newFakeProbe(func(_ int, d string) DomainResult {
				return failure(d, fmt.Errorf("%w: unreachable", ErrNetwork))
			})
			cmd := NewCommand("example.com", p, fastRetry(maxRetries))

			r, err := cmd.Execute(context.Background())
			require.NoError(t, err)

			assert.Equal(t, StatusError, r.Status)
			assert.Equal(t, maxRetries, r.RetryCount)
			assert.LessOrEqual(t, r.RetryCount, maxRetries)
			assert.EqualValues(t, maxRetries+1, p.calls.Load())
			assert.ErrorIs(t, r.Err(), ErrNetwork)
			assert.Equal(t, CommandFailed, cmd.State())
		})
	}
}

func TestCommandSucceedsAfterRetry(t *testing.T) {
	p := newFakeProbe(func(call int, d string) DomainResult {
		if call == 1 {
			return failure(d, fmt.Errorf("%w: after 5000ms", ErrTimeout))
		}
		return verdict(d, StatusTaken)
	})
	cmd := NewCommand("example.com", p, fastRetry(3))

	r, err := cmd.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusTaken, r.Status)
	assert.Equal(t, 1, r.RetryCount)
	assert.EqualValues(t, 2, p.calls.Load())
	assert.Equal(t, CommandCompleted, cmd.State())
}

func TestCommandValidation(t *testing.T) {
	tests := []struct {
		domain  string
		mention string
	}{
		{"", "empty"},
		{"   ", "empty"},
		{"example", "example"},
		{"bad_domain.com", "bad_domain.com"},
		{"-lead.com", "-lead.com"},
		{"trail-.com", "trail-.com"},
		{"example.c", "example.c"},
		{"example.c0m", "example.c0m"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			p := newFakeProbe(func(_ int, d string) DomainResult { return verdict(d, StatusTaken) })
			cmd := NewCommand(tt.domain, p, fastRetry(3))

			assert.Error(t, cmd.Validate())

			r, err := cmd.Execute(context.Background())
			require.NoError(t, err)
			assert.Equal(t, StatusError, r.Status)
			assert.Equal(t, KindInvalidFormat, r.Kind())
			assert.Contains(t, r.Error, tt.mention)
			assert.Zero(t, p.calls.Load(), "validation must precede any probe call")
			assert.Zero(t, r.RetryCount)
			assert.Equal(t, CommandFailed, cmd.State())
		})
	}
}

func TestCommandAcceptsPunycodeTLD(t *testing.T) {
	p := newFakeProbe(func(_ int, d string) DomainResult { return verdict(d, StatusTaken) })
	cmd := NewCommand("example.xn--p1ai", p, fastRetry(0))

	r, err := cmd.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusTaken, r.Status, "error: %s", r.Error)
	assert.EqualValues(t, 1, p.calls.Load())
	assert.Equal(t, ".xn--p1ai", r.TLD)
}

func TestCommandNonRetryableErrors(t *testing.T) {
	for _, sentinel := range []error{ErrUnsupportedTLD, ErrProbeDisabled, ErrInvalidDomain} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			p := newFakeProbe(func(_ int, d string) DomainResult { return failure(d, sentinel) })
			cmd := NewCommand("example.com", p, fastRetry(3))

			r, err := cmd.Execute(context.Background())
			require.NoError(t, err)
			assert.ErrorIs(t, r.Err(), sentinel)
			assert.EqualValues(t, 1, p.calls.Load())
		})
	}
}

func TestCommandExecutesOnce(t *testing.T) {
	p := newFakeProbe(func(_ int, d string) DomainResult { return verdict(d, StatusAvailable) })
	cmd := NewCommand("example.com", p, fastRetry(0))
	assert.Equal(t, CommandPending, cmd.State())

	_, err := cmd.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CommandCompleted, cmd.State())

	_, err = cmd.Execute(context.Background())
	assert.ErrorIs(t, err, ErrCommandTerminated)
	assert.Equal(t, CommandCompleted, cmd.State())
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestCommandConcurrentExecute(t *testing.T) {
	p := newFakeProbe(func(_ int, d string) DomainResult {
		time.Sleep(10 * time.Millisecond)
		return verdict(d, StatusAvailable)
	})
	cmd := NewCommand("example.com", p, fastRetry(0))

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cmd.Execute(context.Background()); err == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestCommandNoStrategy(t *testing.T) {
	cmd := NewCommand("example.com", nil, DefaultRetryConfig())
	_, err := cmd.Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoStrategy)
	assert.Equal(t, CommandPending, cmd.State())
}

func TestCommandPanicRecovery(t *testing.T) {
	p := newFakeProbe(func(int, string) DomainResult { panic("probe exploded") })
	cmd := NewCommand("example.com", p, fastRetry(1))

	r, err := cmd.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusError, r.Status)
	assert.ErrorIs(t, r.Err(), ErrInternalPanic)
	assert.Contains(t, r.Error, "probe exploded")
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestCommandContextCancelledDuringBackoff(t *testing.T) {
	p := newFakeProbe(func(_ int, d string) DomainResult { return failure(d, ErrNetwork) })
	cmd := NewCommand("example.com", p, RetryConfig{MaxRetries: 5, InitialDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	r, err := cmd.Execute(ctx)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StatusError, r.Status)
	assert.Zero(t, r.RetryCount)
	assert.EqualValues(t, 1, p.calls.Load())
	assert.Equal(t, CommandFailed, cmd.State())
}

func TestCommandClone(t *testing.T) {
	p := newFakeProbe(func(_ int, d string) DomainResult { return verdict(d, StatusTaken) })
	cmd := NewCommand("example.com", p, fastRetry(2))
	_, err := cmd.Execute(context.Background())
	require.NoError(t, err)

	clone := cmd.Clone()
	assert.NotEqual(t, cmd.ID(), clone.ID())
	assert.Equal(t, cmd.Domain(), clone.Domain())
	assert.Equal(t, cmd.RetryConfig(), clone.RetryConfig())
	assert.Equal(t, cmd.Priority(), clone.Priority())
	assert.Equal(t, CommandPending, clone.State())

	r, err := clone.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusTaken, r.Status)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestCommandPriorityFromProbe(t *testing.T) {
	p := newFakeProbe(nil)
	cfg := p.Config()
	cfg.Priority = PriorityHigh
	p.SetConfig(cfg)

	assert.Equal(t, PriorityHigh, NewCommand("example.com", p, DefaultRetryConfig()).Priority())
	assert.Equal(t, PriorityNormal, NewCommand("example.com", nil, DefaultRetryConfig()).Priority())
}

func TestCommandHistory(t *testing.T) {
	p := newFakeProbe(func(call int, d string) DomainResult {
		if d == "bad.com" {
			return failure(d, ErrNetwork)
		}
		return verdict(d, StatusTaken)
	})
	h := NewHistory(10)

	ok := NewCommand("good.com", p, fastRetry(1))
	ok.history = h
	bad := NewCommand("bad.com", p, fastRetry(1))
	bad.history = h

	rejected := NewCommand("bad_domain.com", p, fastRetry(1))
	rejected.history = h

	_, _ = ok.Execute(context.Background())
	_, _ = bad.Execute(context.Background())
	_, _ = rejected.Execute(context.Background())

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, ok.ID(), entries[0].ID)
	assert.Equal(t, CommandCompleted, entries[0].State)
	assert.Equal(t, 1, entries[0].Attempts)
	assert.Equal(t, "bad.com", entries[1].Domain)
	assert.Equal(t, CommandFailed, entries[1].State)
	assert.Equal(t, 2, entries[1].Attempts)
	assert.Equal(t, "bad_domain.com", entries[2].Domain)
	assert.Equal(t, CommandFailed, entries[2].State)
	assert.Zero(t, entries[2].Attempts, "rejected before any attempt")
}

func TestRetryConfigDelay(t *testing.T) {
	rc := DefaultRetryConfig()
	assert.Equal(t, 2, rc.MaxRetries)
	assert.Zero(t, rc.Delay(0))
	assert.Equal(t, time.Second, rc.Delay(1))
	assert.Equal(t, 2*time.Second, rc.Delay(2))
	assert.Equal(t, 4*time.Second, rc.Delay(3))
	assert.Equal(t, 8*time.Second, rc.Delay(4))
	assert.Equal(t, 10*time.Second, rc.Delay(5))
	assert.Equal(t, 10*time.Second, rc.Delay(500))

	rc.UseExponentialBackoff = false
	assert.Equal(t, time.Second, rc.Delay(4))

	rc = RetryConfig{InitialDelay: 100 * time.Millisecond, UseExponentialBackoff: true, BackoffMultiplier: 3}
	assert.Equal(t, 900*time.Millisecond, rc.Delay(3))

	rc.BackoffMultiplier = 0
	assert.Equal(t, 400*time.Millisecond, rc.Delay(3))
}

func TestCommandStateString(t *testing.T) {
	assert.Equal(t, "pending", CommandPending.String())
	assert.Equal(t, "executing", CommandExecuting.String())
	assert.Equal(t, "completed", CommandCompleted.String())
	assert.Equal(t, "failed", CommandFailed.String())
	assert.Equal(t, "state(9)", CommandState(9).String())
	assert.True(t, CommandFailed.Terminal())
	assert.False(t, CommandExecuting.Terminal())
}
