// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package watch re-checks a list of domains on a cron schedule and
// reports verdict changes.
//
// Transitions are kept in memory for the life of the process only.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

const defaultTransitionLimit = 1000

// Transition is a change of verdict between two runs.
type Transition struct {
	Domain string              `json:"domain"`
	From   availability.Status `json:"from"`
	To     availability.Status `json:"to"`
	At     time.Time           `json:"at"`
}

// Watcher periodically checks domains with a checker.
//
// The checker should not cache results for longer than the schedule
// interval, otherwise runs observe stale verdicts.
type Watcher struct {
	checker *availability.Checker
	cron    *cron.Cron
	logger  *zap.Logger
	limit   int
	notify  func(Transition)

	mu          sync.Mutex
	domains     []string
	last        map[string]availability.Status
	transitions []Transition
}

// Option configures a [Watcher].
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithNotify registers fn to be called for every transition.
func WithNotify(fn func(Transition)) Option {
	return func(w *Watcher) { w.notify = fn }
}

// WithTransitionLimit bounds the transitions kept in memory.
func WithTransitionLimit(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.limit = n
		}
	}
}

// New creates a watcher for domains. Scheduled runs never overlap: a run
// still in progress when the next one is due causes that one to be
// skipped.
func New(checker *availability.Checker, domains []string, opts ...Option) *Watcher {
	w := &Watcher{
		checker: checker,
		logger:  zap.NewNop(),
		limit:   defaultTransitionLimit,
		domains: append([]string(nil), domains...),
		last:    make(map[string]availability.Status),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return w
}

// ValidateSchedule reports whether expr is a valid cron expression or
// descriptor such as "@every 5m".
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("watch: invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Schedule runs the watcher on expr once started.
func (w *Watcher) Schedule(expr string) error {
	if err := ValidateSchedule(expr); err != nil {
		return err
	}
	_, err := w.cron.AddFunc(expr, func() {
		if _, err := w.RunOnce(context.Background()); err != nil {
			w.logger.Warn("scheduled run incomplete", zap.Error(err))
		}
	})
	return err
}

// Start starts the scheduler in the background.
func (w *Watcher) Start() {
	w.cron.Start()
	w.logger.Info("watcher started", zap.Int("domains", len(w.Domains())))
}

// Stop stops the scheduler. The returned context is done once a running
// check has finished.
func (w *Watcher) Stop() context.Context {
	return w.cron.Stop()
}

// Add starts watching more domains.
func (w *Watcher) Add(domains ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range domains {
		found := false
		for _, existing := range w.domains {
			if existing == d {
				found = true
				break
			}
		}
		if !found {
			w.domains = append(w.domains, d)
		}
	}
}

// Domains returns the watched domains.
func (w *Watcher) Domains() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.domains...)
}

// RunOnce checks every watched domain and returns the transitions it
// observed. Error results leave a domain's last known verdict unchanged.
func (w *Watcher) RunOnce(ctx context.Context) ([]Transition, error) {
	domains := w.Domains()
	results, err := w.checker.Check(ctx, domains...)

	w.mu.Lock()
	var changed []Transition
	for _, r := range results {
		if r.Status == availability.StatusError {
			w.logger.Debug("watch check failed",
				zap.String("domain", r.Domain),
				zap.String("error", r.Error),
			)
			continue
		}

		prev, seen := w.last[r.Domain]
		w.last[r.Domain] = r.Status
		if !seen || prev == r.Status {
			continue
		}

		t := Transition{Domain: r.Domain, From: prev, To: r.Status, At: r.LastChecked}
		changed = append(changed, t)
		w.transitions = append(w.transitions, t)
		if over := len(w.transitions) - w.limit; over > 0 {
			w.transitions = append(w.transitions[:0], w.transitions[over:]...)
		}
	}
	w.mu.Unlock()

	for _, t := range changed {
		w.logger.Info("verdict changed",
			zap.String("domain", t.Domain),
			zap.String("from", string(t.From)),
			zap.String("to", string(t.To)),
		)
		if w.notify != nil {
			w.notify(t)
		}
	}
	return changed, err
}

// Status returns the last known verdict for domain.
func (w *Watcher) Status(domain string) (availability.Status, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.last[domain]
	return s, ok
}

// Transitions returns the recorded transitions, oldest first.
func (w *Watcher) Transitions() []Transition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Transition(nil), w.transitions...)
}
