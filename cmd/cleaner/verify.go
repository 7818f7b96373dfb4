package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd(state *cliState) *cobra.Command {
	var input, report string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a cleaned CSV export",
		Long: `Re-reads a cleaned CSV export and checks that every column has its
cleaned type, dates agree with their month labels and no duplicate rows
remain. With --report the values are also checked against the outlier
bounds recorded for the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			container, shutdown, err := newBatchServices(state)
			if err != nil {
				return err
			}
			defer shutdown(ctx)

			summary, err := container.Cleaning.Verify(ctx, input, report)
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			cmd.Printf("Verified %d rows in %s\n", summary.Rows, summary.Input)
			if summary.BoundsChecked {
				cmd.Printf("Bounds checked for %d columns\n", summary.OutlierColumns)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "in", "", "cleaned CSV location")
	cmd.Flags().StringVar(&report, "report", "", "run report with the bounds to check against")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
