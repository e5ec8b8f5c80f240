package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/mcp"
	"github.com/custodia-labs/coursemate/internal/core/services"
)

// mcpPortRange is how many ports above --port are tried when it is taken.
const mcpPortRange = 10

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
your courses.

Tools: search_course_content, ask_course_question, list_courses.
Resources: coursemate://courses and coursemate://courses/{title}.

By default the server communicates over stdio. Use --port to serve
streamable HTTP instead; HTTP mode also exposes Prometheus metrics at
/metrics. If the port is taken the next free one is used.

Examples:
  # Stdio mode (default, for desktop assistants)
  coursemate mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  coursemate mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "coursemate": {
        "command": "/path/to/coursemate",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio, default from settings)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if !cmd.Flags().Changed("port") && appSettings != nil {
		port = appSettings.MCP.Port
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:  searchService,
		Query:   queryService,
		Catalog: catalogService,
		Metrics: metricsHandler,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		ln, actual, err := services.ListenAvailable(port, port+mcpPortRange)
		if err != nil {
			return err
		}
		cmd.PrintErrf("MCP server listening on http://localhost:%d\n", actual)
		return server.Serve(cmd.Context(), ln)
	}

	return server.Run(cmd.Context())
}
