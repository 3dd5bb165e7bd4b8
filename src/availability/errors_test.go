// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"invalid", fmt.Errorf("%w: x", ErrInvalidDomain), KindInvalidFormat},
		{"network", ErrNetwork, KindNetwork},
		{"unknown", errors.New("boom"), KindNetwork},
		{"cancelled", context.Canceled, KindNetwork},
		{"timeout", fmt.Errorf("%w: after 5ms", ErrTimeout), KindTimeout},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"ambiguous", ErrAmbiguousResponse, KindParseAmbiguous},
		{"both failed", fmt.Errorf("%w (DNS: %v)", ErrBothFailed, ErrTimeout), KindBothFailed},
		{"unsupported", ErrUnsupportedTLD, KindUnsupported},
		{"disabled", ErrProbeDisabled, KindUnsupported},
		{"panic", ErrInternalPanic, KindInternal},
		{"no strategy", ErrNoStrategy, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.False(t, retryable(ErrInvalidDomain))
	assert.False(t, retryable(ErrUnsupportedTLD))
	assert.False(t, retryable(ErrProbeDisabled))
	assert.True(t, retryable(ErrNetwork))
	assert.True(t, retryable(ErrTimeout))
	assert.True(t, retryable(ErrAmbiguousResponse))
	assert.True(t, retryable(ErrBothFailed))
}

func TestDeadlineError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := deadlineError(ctx, "DNS query", 5*time.Second)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.EqualError(t, err, "availability: timeout: DNS query timeout after 5000ms")

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	err = deadlineError(ctx, "WHOIS query", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestDomainResultErrorInvariant(t *testing.T) {
	start := time.Now()

	ok := newResult("example.com", MethodDNS).finish(StatusTaken, start)
	assert.Empty(t, ok.Error)
	assert.NoError(t, ok.Err())
	assert.Equal(t, KindNone, ok.Kind())
	assert.True(t, ok.Done())

	bad := errorResult("example.com", MethodWHOIS, ErrTimeout, start)
	assert.Equal(t, StatusError, bad.Status)
	assert.Equal(t, ErrTimeout.Error(), bad.Error)
	assert.Equal(t, KindTimeout, bad.Kind())
	assert.False(t, bad.LastChecked.Before(start))
	assert.GreaterOrEqual(t, bad.ExecutionTime, time.Duration(0))
}

func TestPlaceholder(t *testing.T) {
	r := Placeholder("example.com", MethodHybrid)
	assert.Equal(t, StatusChecking, r.Status)
	assert.False(t, r.Done())
	assert.Equal(t, "example", r.BaseDomain)
	assert.Equal(t, ".com", r.TLD)
	assert.True(t, r.LastChecked.IsZero())
}

func TestDomainResultJSON(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newResult("example.com", MethodHybrid).finish(StatusTaken, time.Now())
	r.Warning = "DNS check failed"
	r.WhoisData = &WhoisData{Registrar: "Foo", CreationDate: &created}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "taken", m["status"])
	assert.Equal(t, "hybrid", m["checkMethod"])
	assert.Equal(t, "example", m["baseDomain"])
	assert.Equal(t, ".com", m["tld"])
	assert.Equal(t, "DNS check failed", m["warning"])
	assert.NotContains(t, m, "error")
	assert.NotContains(t, m, "dnsRecords")

	whois, ok := m["whoisData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Foo", whois["registrar"])
	assert.Equal(t, "2020-01-01T00:00:00Z", whois["creationDate"])
	assert.NotContains(t, whois, "expirationDate")
}
