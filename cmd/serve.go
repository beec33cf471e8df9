package cmd

import (
	"fmt"

	"github.com/mj1618/winwatch/internal/lifecycle"
	"github.com/mj1618/winwatch/internal/registry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server backed by the live window registry",
	Long: `Start a Model Context Protocol (MCP) server. The window registry runs in
the background for the life of the server; tools read its latest snapshot.

Tools: list_windows, filter_windows, check_rule, focus_window, show_window.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  winwatch serve
  winwatch serve --transport streamable-http --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	cfg := MCPConfig{
		Transport: transport,
		Port:      port,
	}

	ctx := commandContext(cmd)
	tel, err := initTelemetry(ctx)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(tel)

	provider, err := newProvider()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	co := lifecycle.Default()
	reg := co.Registry(func() *registry.Registry {
		return newRegistry(provider, registry.WithMetrics(tel.Metrics))
	})
	if err := reg.Start(); err != nil {
		return err
	}
	defer func() {
		err = finishRegistry(co, appConfig.StopGraceDuration, err)
	}()

	srv := newMCPServer(reg, provider.Manager)
	if err := srv.serve(cfg); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
