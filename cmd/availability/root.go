// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/H0llyW00dzZ/availability-checker/internal/config"
	"github.com/H0llyW00dzZ/availability-checker/internal/export"
	"github.com/H0llyW00dzZ/availability-checker/internal/logger"
	"github.com/H0llyW00dzZ/availability-checker/internal/storage"
	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

// app carries global flags and the state built from them.
type app struct {
	configPath string
	method     string
	timeout    time.Duration
	resolvers  []string
	logLevel   string
	format     string
	output     string

	outFormat export.Format
	cfg       *config.Config
	logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "availability",
		Short:         "Check whether domain names are registered",
		Long:          "availability combines DNS record lookups and WHOIS queries into a single verdict per domain.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a YAML configuration file")
	flags.StringVarP(&a.method, "method", "m", "", "check method: dns, whois or hybrid")
	flags.DurationVarP(&a.timeout, "timeout", "t", 0, "per-probe timeout (hybrid checks give each side half)")
	flags.StringSliceVar(&a.resolvers, "resolvers", nil, "DNS resolvers, host[:port]")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVarP(&a.format, "format", "f", "", "output format: table, json, csv or xlsx")
	flags.StringVarP(&a.output, "output", "o", "", "write results to a file instead of stdout")

	root.AddCommand(
		newCheckCmd(a),
		newTLDsCmd(a),
		newStatusCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
	)
	return root
}

// init loads the configuration and applies flag overrides.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = availability.CheckMethod(a.method)
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("resolvers") {
		cfg.Resolvers = a.resolvers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := export.ParseFormat(a.format)
	if err != nil {
		return err
	}
	if a.output != "" && a.format == "" {
		format = export.FormatForPath(a.output, export.FormatTable)
	}
	if format == export.FormatXLSX && a.output == "" {
		return errors.New("xlsx output requires --output")
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.outFormat = format
	a.cfg = cfg
	a.logger = l
	return nil
}

// newChecker builds a checker from the configuration. The returned
// cleanup releases the Redis connection, if any.
func (a *app) newChecker(extra ...availability.Option) (*availability.Checker, func(), *storage.RedisCache) {
	opts := a.cfg.Options(a.logger)
	cleanup := func() {}

	var cache *storage.RedisCache
	if a.cfg.Cache.Enabled && a.cfg.Cache.RedisAddr != "" {
		client := storage.Dial(a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPassword, a.cfg.Cache.RedisDB)
		cache = storage.NewRedisCache(client, a.cfg.Cache.RedisPrefix, a.cfg.Cache.TTL, a.logger)
		opts = append(opts, availability.WithCache(cache))
		cleanup = func() { _ = cache.Close() }
	}

	return availability.New(append(opts, extra...)...), cleanup, cache
}

// writeResults writes results in the selected format to --output or the
// command's stdout.
func (a *app) writeResults(cmd *cobra.Command, results []availability.DomainResult) error {
	if a.output == "" {
		return export.Write(cmd.OutOrStdout(), a.outFormat, results)
	}

	f, err := os.Create(a.output)
	if err != nil {
		return err
	}
	if err := export.Write(f, a.outFormat, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("results written", zap.String("path", a.output), zap.String("format", string(a.outFormat)))
	return nil
}
