// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// BatchExecutor checks many domains with one probe.
//
// Domains are processed in chunks: every domain of a chunk runs
// concurrently as its own [Command], and the executor pauses between
// chunks so shared resources such as the WHOIS rate limiter are not
// flooded. Results always come back in input order.
type BatchExecutor struct {
	probe      Probe
	retry      RetryConfig
	chunkSize  int
	chunkDelay time.Duration
	history    *History
	logger     *zap.Logger
}

// NewBatchExecutor creates an executor running commands around probe.
// A non-positive chunkSize uses the default of 5 and a negative
// chunkDelay uses the default of 100ms.
func NewBatchExecutor(probe Probe, retry RetryConfig, chunkSize int, chunkDelay time.Duration) *BatchExecutor {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkDelay < 0 {
		chunkDelay = defaultChunkDelay
	}
	return &BatchExecutor{
		probe:      probe,
		retry:      retry.normalize(),
		chunkSize:  chunkSize,
		chunkDelay: chunkDelay,
		logger:     zap.NewNop(),
	}
}

// ChunkSize returns the number of domains checked concurrently.
func (e *BatchExecutor) ChunkSize() int { return e.chunkSize }

// NewCommand creates a command for domain using the executor's probe and
// retry configuration.
func (e *BatchExecutor) NewCommand(domain string) *Command {
	cmd := NewCommand(domain, e.probe, e.retry)
	cmd.history = e.history
	return cmd
}

// ExecuteBatch checks domains and returns one result per domain, in input
// order. A failing or panicking domain yields an error result without
// affecting the others.
//
// When ctx is done, domains not yet started get an error result carrying
// ctx.Err(), running ones finish, and ctx.Err() is returned alongside the
// results.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, domains []string) ([]DomainResult, error) {
	if e.probe == nil {
		return nil, ErrNoStrategy
	}

	results := make([]DomainResult, len(domains))

Loop:
	for chunkStart := 0; chunkStart < len(domains); chunkStart += e.chunkSize {
		if chunkStart > 0 && e.chunkDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(e.chunkDelay):
			}
		}

		// Check context before starting the next chunk.
		if ctx.Err() != nil {
			e.fill(results, domains, chunkStart, ctx.Err())
			break Loop
		}

		chunkEnd := min(chunkStart+e.chunkSize, len(domains))
		var wg sync.WaitGroup
		for i := chunkStart; i < chunkEnd; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = e.run(ctx, e.NewCommand(domains[i]))
			}()
		}
		wg.Wait()

		e.logger.Debug("batch chunk finished",
			zap.Int("from", chunkStart),
			zap.Int("to", chunkEnd),
			zap.Int("total", len(domains)),
		)
	}

	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}

// ExecuteQueue drains q and runs its commands, at most ChunkSize at a
// time, in priority order. Results are returned in dequeue order. Commands
// not started before ctx is done get an error result carrying ctx.Err().
func (e *BatchExecutor) ExecuteQueue(ctx context.Context, q *Queue) ([]DomainResult, error) {
	cmds := q.drain()
	results := make([]DomainResult, len(cmds))
	sem := semaphore.NewWeighted(int64(e.chunkSize))
	var wg sync.WaitGroup

	for i, cmd := range cmds {
		if ctx.Err() != nil || sem.Acquire(ctx, 1) != nil {
			for j := i; j < len(cmds); j++ {
				results[j] = errorResult(cmds[j].Domain(), e.method(cmds[j]), ctx.Err(), time.Now())
			}
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = e.run(ctx, cmd)
		}()
	}

	wg.Wait()
	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}

// run executes cmd, converting misuse errors and panics into error results.
func (e *BatchExecutor) run(ctx context.Context, cmd *Command) (result DomainResult) {
	start := time.Now()
	method := e.method(cmd)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("command panicked",
				zap.String("domain", cmd.Domain()),
				zap.Any("panic", r),
			)
			result = errorResult(cmd.Domain(), method, fmt.Errorf("%w: %v", ErrInternalPanic, r), start)
		}
	}()

	result, err := cmd.Execute(ctx)
	if err != nil {
		return errorResult(cmd.Domain(), method, err, start)
	}
	return result
}

// method returns the check method stamped on results for cmd.
func (e *BatchExecutor) method(cmd *Command) CheckMethod {
	switch {
	case cmd.probe != nil:
		return cmd.probe.Method()
	case e.probe != nil:
		return e.probe.Method()
	default:
		return MethodHybrid
	}
}

// fill sets an error result for every domain from index from onwards.
func (e *BatchExecutor) fill(results []DomainResult, domains []string, from int, err error) {
	now := time.Now()
	for j := from; j < len(domains); j++ {
		results[j] = errorResult(domains[j], e.probe.Method(), err, now)
	}
}
