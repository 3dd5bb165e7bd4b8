// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/availability-checker/internal/export"
	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

type resolverRow struct {
	availability.ResolverStatus
	Error string `json:"error,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report the health of the configured DNS resolvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checker, cleanup, _ := a.newChecker()
			defer cleanup()

			statuses, err := checker.ResolverStatus(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]resolverRow, len(statuses))
			online := 0
			for i, st := range statuses {
				rows[i] = resolverRow{ResolverStatus: st}
				if st.Error != nil {
					rows[i].Error = st.Error.Error()
				}
				if st.Online {
					online++
				}
			}

			out := cmd.OutOrStdout()
			if a.outFormat == export.FormatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SERVER\tONLINE\tLATENCY\tERROR")
			for _, r := range rows {
				latency := "-"
				if r.Online {
					latency = fmt.Sprintf("%dms", r.LatencyMs)
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", r.Server, r.Online, latency, r.Error)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if online == 0 {
				return fmt.Errorf("no resolver is reachable (%d configured)", len(rows))
			}
			return nil
		},
	}
}
