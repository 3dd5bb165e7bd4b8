// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/H0llyW00dzZ/availability-checker/internal/watch"
	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		schedule string
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "watch [domain...]",
		Short: "Re-check domains on a schedule and report verdict changes",
		Example: `  availability watch example.com --schedule "@every 30m"
  availability watch --config availability.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("schedule") {
				schedule = a.cfg.Watch.Schedule
			}
			if err := watch.ValidateSchedule(schedule); err != nil {
				return err
			}
			domains := append(append([]string(nil), a.cfg.Watch.Domains...), args...)
			if len(domains) == 0 {
				return errors.New("no domains to watch")
			}

			// Cached verdicts would hide changes between runs.
			checker, cleanup, _ := a.newChecker(availability.WithCache(nil))
			defer cleanup()

			out := cmd.OutOrStdout()
			w := watch.New(checker, domains,
				watch.WithLogger(a.logger),
				watch.WithNotify(func(t watch.Transition) {
					fmt.Fprintf(out, "%s %s: %s -> %s\n",
						t.At.Format("2006-01-02T15:04:05Z07:00"), t.Domain, t.From, t.To)
				}),
			)

			if _, err := w.RunOnce(cmd.Context()); err != nil {
				a.logger.Warn("initial run incomplete", zap.Error(err))
			}
			for _, d := range w.Domains() {
				if s, ok := w.Status(d); ok {
					fmt.Fprintf(out, "%s: %s\n", d, s)
				}
			}
			if once {
				return nil
			}

			if err := w.Schedule(schedule); err != nil {
				return err
			}
			w.Start()
			<-cmd.Context().Done()
			<-w.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", `cron expression or descriptor such as "@every 1h"`)
	cmd.Flags().BoolVar(&once, "once", false, "check once and exit")
	return cmd
}
