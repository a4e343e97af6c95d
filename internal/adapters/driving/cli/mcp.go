package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can run
LIS gene and trait searches.

By default the server communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead. It also serves Prometheus
metrics at /metrics.

Tools:
  search_genes   Search genes by genus, species, identifier, name...
  search_traits  Search traits by genus, species or name
  download       Write every result page of a search to a TSV file

Resources:
  lis://history          Recent query strings of every kind
  lis://history/{kind}   Recent query strings of one kind

Examples:
  # Stdio mode
  lis-search mcp serve

  # HTTP mode
  lis-search mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpPorts builds the MCP ports from the wired services.
func mcpPorts(s *Services) *mcp.Ports {
	return &mcp.Ports{
		Genes:   s.Genes,
		Traits:  s.Traits,
		History: s.History,
		Metrics: s.Metrics,
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := requireServices()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(mcpPorts(s))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
