// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"sync"
	"time"
)

// HistoryEntry describes one finished [Command].
type HistoryEntry struct {
	ID       string        `json:"id"`
	Domain   string        `json:"domain"`
	State    CommandState  `json:"state"`
	Attempts int           `json:"attempts"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// History is a bounded in-memory log of finished commands. When full,
// the oldest entry is dropped. It lives only as long as its owner.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	limit   int
}

// NewHistory creates a history keeping at most limit entries.
// A non-positive limit keeps nothing.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 0)}
}

func (h *History) record(e HistoryEntry) {
	if h.limit == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) >= h.limit {
		// Drop the oldest entry.
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
}

// Entries returns the recorded entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reset drops all entries.
func (h *History) Reset() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}
