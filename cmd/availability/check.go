// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

func newCheckCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check [domain...]",
		Short: "Check one or more domains",
		Example: `  availability check example.com example.org
  availability check --file domains.txt --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			domains := args
			if file != "" {
				more, err := readDomains(file)
				if err != nil {
					return err
				}
				domains = append(domains, more...)
			}
			if len(domains) == 0 {
				return errors.New("no domains given")
			}

			checker, cleanup, _ := a.newChecker()
			defer cleanup()

			results, err := checker.Check(cmd.Context(), domains...)
			if werr := a.writeResults(cmd, results); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read domains from a file, one per line")
	return cmd
}

func newTLDsCmd(a *app) *cobra.Command {
	var tlds []string

	cmd := &cobra.Command{
		Use:   "tlds <name>",
		Short: "Check a name under several TLDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(tlds) == 0 {
				tlds = a.cfg.TLDs
			}

			checker, cleanup, _ := a.newChecker()
			defer cleanup()

			results, err := checker.CheckTLDs(cmd.Context(), args[0], tlds)
			if werr := a.writeResults(cmd, results); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&tlds, "tlds", nil,
		fmt.Sprintf("TLDs to check (default %s)", strings.Join(availability.CommonTLDs, ",")))
	return cmd
}

// readDomains reads one domain per line, skipping blanks and # comments.
func readDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var domains []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	return domains, sc.Err()
}
