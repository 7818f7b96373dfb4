package main

import (
	"context"

	"github.com/spf13/cobra"

	"bizreport/internal/app"
)

func newServeCmd(state *cliState) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleaning API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != 0 {
				state.cfg.Server.Port = port
			}
			application, err := app.NewApplication(state.cfg, state.logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides configuration)")
	return cmd
}
