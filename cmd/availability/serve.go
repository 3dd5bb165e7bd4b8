// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/H0llyW00dzZ/availability-checker/internal/metrics"
	"github.com/H0llyW00dzZ/availability-checker/internal/server"
	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			m := metrics.New()
			checker, cleanup, cache := a.newChecker(availability.WithMiddleware(m.Middleware))
			defer cleanup()

			opts := []server.Option{
				server.WithMetrics(m),
				server.WithLogger(a.logger),
				server.WithMaxBatch(a.cfg.Server.MaxBatch),
				server.WithRateLimit(a.cfg.Server.RateLimit),
			}
			if cache != nil {
				opts = append(opts, server.WithHealthCheck("redis", cache.Ping))
			}
			srv := server.New(checker, opts...)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(a.cfg.Server.Addr) }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			a.logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
