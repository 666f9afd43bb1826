package main

import (
	"github.com/spf13/cobra"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/constants"
	mcpserver "github.com/jawat-my/saferoute/mcp"
	"github.com/jawat-my/saferoute/utils"
)

// newMCPCmd creates the 'mcp' subcommand and its subcommands.
func newMCPCmd(svc api.RelayService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdMCP,
		Short: "MCP server commands",
	}
	cmd.AddCommand(
		newMCPServeCmd(svc),
		newMCPToolsCmd(svc),
	)
	return cmd
}

// newMCPServeCmd serves every registry operation as an MCP tool.
func newMCPServeCmd(svc api.RelayService) *cobra.Command {
	var stdio bool
	var addr string
	cmd := &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescMCPServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools := api.GenerateMCPTools(svc)
			return mcpserver.Serve(configPath, logLevel == "debug", stdio, addr, tools)
		},
	}
	cmd.Flags().BoolVar(&stdio, "stdio", true, "serve over stdin/stdout instead of HTTP (default)")
	cmd.Flags().StringVar(&addr, "addr", constants.DefaultMCPAddr, "listen address for HTTP mode")
	return cmd
}

// newMCPToolsCmd lists the tools the MCP server would expose.
func newMCPToolsCmd(svc api.RelayService) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools exposed by the server",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range api.GenerateMCPTools(svc) {
				utils.User("%s: %s", t.Name, t.Description)
			}
		},
	}
}
