package cmd

import (
	"errors"

	"github.com/huangsam/covpost/core"
	"github.com/huangsam/covpost/internal/contract"
	"github.com/spf13/cobra"
)

// renderCmd runs the pipeline locally without talking to a review platform.
var renderCmd = &cobra.Command{
	Use:   "render <report-path>",
	Short: "Render coverage tables locally",
	Long: `Parse a JaCoCo XML report and render the total and changed-file coverage tables
without posting anything.

Changed files come from --changed-file, from the diff between --base-ref and
--target-ref in a local repository, or both.

Examples:
  # Markdown comment preview for two files
  covpost render report.xml --changed-file src/main/java/com/x/Foo.java,src/main/kotlin/com/x/Bar.kt

  # Files changed on this branch, as a colored table
  covpost render report.xml --base-ref main --output text

  # Machine readable
  covpost render report.xml --base-ref main --output json --output-file coverage.json`,
	Args: cobra.RangeArgs(0, 1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, args, reportPathArg)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.ReportPath == "" {
			contract.LogFatal("Cannot render coverage", errors.New("report path is required"))
		}
		if err := core.ExecuteRender(rootCtx, cfg, contract.NewLocalGitClient()); err != nil {
			contract.LogFatal("Cannot render coverage", err)
		}
	},
}
