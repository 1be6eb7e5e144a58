package cmd

import (
	"github.com/huangsam/covpost/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [report-path]",
	Short: "Start the covpost MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents summarize coverage reports,
correlate changed files and preview the pull request comment.

An optional report path becomes the default for tools called without report_path.`,
	Args: cobra.RangeArgs(0, 1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		// Logs go to stderr, so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, args, reportPathArg)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
