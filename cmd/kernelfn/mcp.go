package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/dshills/kernelfn/mcp"
	"github.com/dshills/kernelfn/persistence"
	"github.com/spf13/cobra"
)

// mcpCmd serves the kernel tools over stdio
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve kernel tools to an MCP client over stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout exposing the
compute_kernel, get_result, list_results and delete_result tools. Logs go to
the configured logging output, which must not be stdout.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if cfg.Logging.Output == "stdout" {
		return fmt.Errorf("logging output must not be stdout while serving MCP")
	}

	policy, err := compute.NewPolicy(cfg.Compute.Config)
	if err != nil {
		return fmt.Errorf("failed to create compute policy: %w", err)
	}

	store, err := persistence.NewDefaultFactory().CreateStore(cfg.Persistence)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}
	defer store.Close()

	server := mcp.NewServer(core.NewEvaluator(policy), store, logger)
	defer server.Close()
	server.SetRequireFinite(cfg.Compute.RequireFinite)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
