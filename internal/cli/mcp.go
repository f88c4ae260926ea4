package cli

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/lazypower/seastate/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve drift tools over MCP stdio",
	Long:  "Serve drift_status, drift_history, drift_add_sample and drift_replay over MCP stdio, backed by a running seastate server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		if !c.Healthy(cmd.Context()) {
			// stdout belongs to the MCP transport.
			fmt.Fprintf(os.Stderr, "warning: seastate server at %s is not reachable\n", c.URL())
		}
		return server.ServeStdio(mcptools.NewServer(c, VersionString()))
	},
}
