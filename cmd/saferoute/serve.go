package main

import (
	"github.com/spf13/cobra"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/core"
	httpserver "github.com/jawat-my/saferoute/http"
	"github.com/jawat-my/saferoute/telemetry"
	"github.com/jawat-my/saferoute/utils"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd(deps *core.Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := telemetry.Init(deps.Config); err != nil {
				utils.Warn("Telemetry init failed, serving without traces: %v", err)
			}
			if _, err := core.StartDiagnosticsProbe(ctx, deps); err != nil {
				return err
			}
			return httpserver.StartServer(ctx, deps.Config, deps)
		},
	}
}
