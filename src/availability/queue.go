// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"fmt"
	"sync"
)

// Queue is a bounded priority queue of commands.
//
// Higher priorities are dequeued first and commands of equal priority
// leave in the order they arrived. Enqueueing into a full queue fails
// with [ErrQueueFull] instead of dropping work. A Queue is safe for
// concurrent use.
type Queue struct {
	mu       sync.Mutex
	capacity int
	size     int
	lanes    [PriorityHigh + 1][]*Command
}

// NewQueue creates a queue holding at most capacity commands.
// A non-positive capacity uses the default of 100.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &Queue{capacity: capacity}
}

// Enqueue adds cmd with the given priority. Priorities outside the known
// range are clamped.
func (q *Queue) Enqueue(cmd *Command, prio Priority) error {
	if cmd == nil {
		return ErrNoStrategy
	}
	prio = min(max(prio, PriorityLow), PriorityHigh)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size >= q.capacity {
		return fmt.Errorf("%w: %d commands pending, rejecting %s", ErrQueueFull, q.size, cmd.Domain())
	}
	q.lanes[prio] = append(q.lanes[prio], cmd)
	q.size++
	return nil
}

// Dequeue removes and returns the next command. It returns false when
// the queue is empty.
func (q *Queue) Dequeue() (*Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for prio := PriorityHigh; prio >= PriorityLow; prio-- {
		lane := q.lanes[prio]
		if len(lane) == 0 {
			continue
		}
		cmd := lane[0]
		lane[0] = nil
		q.lanes[prio] = lane[1:]
		q.size--
		return cmd, true
	}
	return nil, false
}

// drain removes all commands in dequeue order.
func (q *Queue) drain() []*Command {
	var cmds []*Command
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			return cmds
		}
		cmds = append(cmds, cmd)
	}
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return q.capacity
}
