package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "history <customer_id>",
		Short: "Show recent subscription changes for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.journal == nil {
				return fmt.Errorf("transition journal unavailable: enable redis to record history")
			}

			entries, err := a.journal.Recent(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No subscription changes recorded for %s.\n", args[0])
				return nil
			}

			for _, e := range entries {
				result := fmt.Sprintf("%s (%d)", e.Outcome, e.Code)
				if e.Error != "" {
					result = "error: " + e.Error
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s %-8s %s\n", e.At.Local().Format(time.RFC3339), e.Direction, e.TargetTier, result)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&limit, "limit", "n", 10, "maximum number of entries to show (0 for all)")
	return cmd
}
