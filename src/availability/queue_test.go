// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePriorityOrder(t *testing.T) {
	q := NewQueue(10)
	p := newFakeProbe(nil)

	enqueue := func(domain string, prio Priority) {
		require.NoError(t, q.Enqueue(NewCommand(domain, p, DefaultRetryConfig()), prio))
	}
	enqueue("low1.com", PriorityLow)
	enqueue("normal1.com", PriorityNormal)
	enqueue("high1.com", PriorityHigh)
	enqueue("low2.com", PriorityLow)
	enqueue("high2.com", PriorityHigh)
	enqueue("normal2.com", PriorityNormal)

	var got []string
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, cmd.Domain())
	}

	assert.Equal(t, []string{
		"high1.com", "high2.com",
		"normal1.com", "normal2.com",
		"low1.com", "low2.com",
	}, got)
	assert.Zero(t, q.Len())
}

func TestQueueFull(t *testing.T) {
	q := NewQueue(2)
	p := newFakeProbe(nil)

	require.NoError(t, q.Enqueue(NewCommand("a.com", p, DefaultRetryConfig()), PriorityNormal))
	require.NoError(t, q.Enqueue(NewCommand("b.com", p, DefaultRetryConfig()), PriorityLow))

	err := q.Enqueue(NewCommand("c.com", p, DefaultRetryConfig()), PriorityHigh)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "c.com")
	assert.Equal(t, 2, q.Len())

	_, ok := q.Dequeue()
	require.True(t, ok)
	assert.NoError(t, q.Enqueue(NewCommand("c.com", p, DefaultRetryConfig()), PriorityHigh))
}

func TestQueueClampsPriority(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, 100, q.Cap())

	p := newFakeProbe(nil)
	require.NoError(t, q.Enqueue(NewCommand("under.com", p, DefaultRetryConfig()), Priority(-5)))
	require.NoError(t, q.Enqueue(NewCommand("over.com", p, DefaultRetryConfig()), Priority(42)))

	cmd, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "over.com", cmd.Domain())

	cmd, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "under.com", cmd.Domain())
}

func TestQueueRejectsNil(t *testing.T) {
	q := NewQueue(1)
	assert.ErrorIs(t, q.Enqueue(nil, PriorityNormal), ErrNoStrategy)

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(2)
	for _, d := range []string{"a.com", "b.com", "c.com"} {
		h.record(HistoryEntry{Domain: d})
	}

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b.com", entries[0].Domain)
	assert.Equal(t, "c.com", entries[1].Domain)

	h.Reset()
	assert.Zero(t, h.Len())

	none := NewHistory(0)
	none.record(HistoryEntry{Domain: "a.com"})
	assert.Zero(t, none.Len())
}
