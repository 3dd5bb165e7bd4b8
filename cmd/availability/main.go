// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Command availability checks whether domain names are registered.
//
// Usage:
//
//	availability check example.com example.org
//	availability tlds acme --tlds com,io,dev --format xlsx --output acme.xlsx
//	availability status
//	availability serve --config availability.yaml
//	availability watch example.com --schedule "@every 30m"
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
