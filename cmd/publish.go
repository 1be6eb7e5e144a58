package cmd

import (
	"github.com/huangsam/covpost/core"
	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/internal/review"
	"github.com/spf13/cobra"
)

// publishCmd posts the coverage comment on the pull request of a branch.
var publishCmd = &cobra.Command{
	Use:   "publish <report-path> <token> <api-url> <repository> <branch> [thread-url]",
	Short: "Post a coverage summary comment on a pull request",
	Long: `Parse a JaCoCo XML report, correlate it with the files changed by the pull request
and post both tables as a markdown comment.

Every positional argument can also come from a flag, a COVPOST_ environment variable
or the config file. Positional values win.

When no thread URL is given, the open pull request whose head branch matches <branch>
is looked up. If none is found, covpost exits cleanly without posting.

Examples:
  # Post on the pull request of the current branch
  covpost publish build/reports/jacoco.xml "$TOKEN" https://api.github.com acme/widgets feature/login

  # Preview without posting
  COVPOST_TOKEN=... covpost publish report.xml --api-url https://api.github.com \
    --repository acme/widgets --branch main --dry-run

  # Keep a single comment up to date
  covpost publish report.xml ... --update-existing`,
	Args: cobra.RangeArgs(0, 6),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, args, contract.ApplyPublishArgs)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.RequirePublishInputs(cfg); err != nil {
			contract.LogFatal("Cannot publish coverage", err)
		}
		client := review.NewClient(cfg.APIURL, cfg.Token)
		if err := core.ExecutePublish(rootCtx, cfg, client, storeManager); err != nil {
			contract.LogFatal("Cannot publish coverage", err)
		}
	},
}
