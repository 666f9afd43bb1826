package mcp

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/utils"
	mcp "github.com/metoro-io/mcp-golang"
	mcphttp "github.com/metoro-io/mcp-golang/transport/http"
	mcpstdio "github.com/metoro-io/mcp-golang/transport/stdio"
)

// ToolRegistration holds a tool's registration info for the MCP server.
type ToolRegistration struct {
	Name        string
	Description string
	Handler     any // must be a func(ctx, args) (*mcp.ToolResponse, error)
}

// Serve starts the SafeRoute MCP server with the given configuration and tool registrations.
func Serve(configPath string, debug bool, stdio bool, addr string, tools []ToolRegistration) error {
	// If using stdio transport and debug is disabled, silence user-facing logs on stdout; keep internal logs on stderr
	if stdio && !debug {
		utils.SetUserOutput(io.Discard)
	}

	// Load runtime config; a missing file falls back to env-only configuration.
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return utils.Errorf("failed to load config %s: %w", configPath, err)
	}
	if err := config.FromEnv(cfg); err != nil {
		return utils.Errorf("failed to apply env config: %w", err)
	}

	// Create MCP server transport
	var server *mcp.Server
	if stdio {
		utils.Info("Starting MCP server on stdio...")
		transport := mcpstdio.NewStdioServerTransport()
		server = mcp.NewServer(transport)
	} else {
		utils.Info("Starting MCP server on HTTP at %s...", addr)
		transport := mcphttp.NewHTTPTransport("/mcp").WithAddr(addr)
		server = mcp.NewServer(transport)
	}
	// Register all tools
	RegisterAllTools(server, tools)
	// Start serving
	if err := server.Serve(); err != nil {
		return err
	}
	// For stdio transport, wait for termination signals and exit gracefully
	if stdio {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		utils.Info("Received signal %v, shutting down MCP stdio server", sig)
	}
	return nil
}

// RegisterAllTools registers all provided tools with the MCP server.
// This function is generic and does not import any relay logic.
func RegisterAllTools(server *mcp.Server, tools []ToolRegistration) {
	for _, t := range tools {
		_ = server.RegisterTool(t.Name, t.Description, t.Handler)
	}
}

// EmptyArgs is the argument type for tools that take no input.
type EmptyArgs struct{}
