// ABOUTME: MCP subcommand for running the vox MCP server
// ABOUTME: Handles stdio transport initialization and server lifecycle
package cli

import (
	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the vox MCP server",
	Long:  `Start the Model Context Protocol server for AI assistants to search and inspect recordings over stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		server := mcp.NewServer(database, cfg)
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
