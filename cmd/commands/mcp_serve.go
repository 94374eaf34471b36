package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	wrenchmcp "github.com/dohr-michael/wrench/internal/mcp"
	"github.com/dohr-michael/wrench/internal/plugins"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:      "mcp-serve",
		Usage:     "Expose wrench skills as an MCP server (stdio)",
		ArgsUsage: "[skill or family ...]",
		Action:    runMCPServe,
	}
}

// runMCPServe serves the registry on stdio. Logging goes to stderr, set up
// by the root command.
func runMCPServe(ctx context.Context, cmd *cli.Command) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := plugins.SetupRegistry(cfg, store)
	if err != nil {
		return fmt.Errorf("setup skills: %w", err)
	}

	filter := cmd.Args().Slice()
	slog.Debug("mcp: starting server", "filter", filter, "skills", len(registry.Names()))

	server := wrenchmcp.NewMCPServer(registry, filter, Version)
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
