// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

// flipper is a WHOIS registry whose answer for every domain can be
// switched between registered, free and unreachable.
type flipper struct {
	state atomic.Int32 // 0 free, 1 registered, 2 down
	calls atomic.Int32
}

func (f *flipper) Query(_ context.Context, domain string) (string, error) {
	f.calls.Add(1)
	switch f.state.Load() {
	case 1:
		return "Registrar: Example Registrar\nCreation Date: 2020-01-01", nil
	case 2:
		return "", errors.New("connection refused")
	default:
		return "No match for " + domain, nil
	}
}

func newTestChecker(f *flipper) *availability.Checker {
	return availability.New(
		availability.WithMethod(availability.MethodWHOIS),
		availability.WithWhoisClient(f),
		availability.WithRateLimitDelay(0),
		availability.WithMaxRetries(0),
		availability.WithRetryConfig(availability.RetryConfig{}),
		availability.WithCache(nil),
		availability.WithResolvers("127.0.0.1:1"),
	)
}

func TestRunOnceRecordsTransitions(t *testing.T) {
	f := &flipper{}
	var notified []Transition
	w := New(newTestChecker(f), []string{"a.com", "b.com"},
		WithNotify(func(tr Transition) { notified = append(notified, tr) }),
	)

	changed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changed, "first observation is not a transition")

	s, ok := w.Status("a.com")
	require.True(t, ok)
	assert.Equal(t, availability.StatusAvailable, s)

	f.state.Store(1)
	changed, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, "a.com", changed[0].Domain)
	assert.Equal(t, availability.StatusAvailable, changed[0].From)
	assert.Equal(t, availability.StatusTaken, changed[0].To)
	assert.False(t, changed[0].At.IsZero())
	assert.Len(t, notified, 2)

	// Unchanged verdicts produce nothing.
	changed, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Len(t, w.Transitions(), 2)
}

func TestRunOnceIgnoresErrors(t *testing.T) {
	f := &flipper{}
	f.state.Store(1)
	w := New(newTestChecker(f), []string{"a.com"})

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	f.state.Store(2)
	changed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changed)

	s, _ := w.Status("a.com")
	assert.Equal(t, availability.StatusTaken, s)
}

func TestTransitionLimit(t *testing.T) {
	f := &flipper{}
	w := New(newTestChecker(f), []string{"a.com"}, WithTransitionLimit(2))

	for i := range 5 {
		f.state.Store(int32(i % 2))
		_, err := w.RunOnce(context.Background())
		require.NoError(t, err)
	}

	got := w.Transitions()
	require.Len(t, got, 2)
	assert.Equal(t, availability.StatusAvailable, got[0].From)
	assert.Equal(t, availability.StatusTaken, got[1].From)
}

func TestAddDomains(t *testing.T) {
	w := New(newTestChecker(&flipper{}), []string{"a.com"})
	w.Add("b.com", "a.com")
	assert.Equal(t, []string{"a.com", "b.com"}, w.Domains())
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 5m"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.NoError(t, ValidateSchedule("@hourly"))
	assert.Error(t, ValidateSchedule("every now and then"))
	assert.Error(t, ValidateSchedule("* * *"))

	w := New(newTestChecker(&flipper{}), nil)
	assert.Error(t, w.Schedule("bogus"))
}

func TestScheduledRun(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the scheduler")
	}

	f := &flipper{}
	w := New(newTestChecker(f), []string{"a.com"})
	require.NoError(t, w.Schedule("@every 1s"))
	w.Start()
	defer func() { <-w.Stop().Done() }()

	assert.Eventually(t, func() bool {
		_, ok := w.Status("a.com")
		return ok
	}, 5*time.Second, 50*time.Millisecond)
	assert.Positive(t, f.calls.Load())
}
