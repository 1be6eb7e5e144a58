// Package cmd defines the command-line interface for covpost.
package cmd

import (
	"github.com/huangsam/covpost/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(contract.DefaultOutput), "Output format: markdown or text or json or csv")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("history-backend", string(contract.DefaultHistoryBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of publishCmd to Viper
	publishCmd.Flags().String("token", "", "Access token for the review platform (prefer COVPOST_TOKEN)")
	publishCmd.Flags().String("api-url", "", "Base URL of the review platform REST API (e.g., https://api.github.com)")
	publishCmd.Flags().String("repository", "", "Repository in owner/name form")
	publishCmd.Flags().String("branch", "", "Branch whose pull request receives the comment")
	publishCmd.Flags().String("thread-url", "", "Pull request API URL; skips the lookup by branch")
	publishCmd.Flags().Bool("dry-run", false, "Render and print the comment without posting it")
	publishCmd.Flags().Bool("update-existing", false, "Edit the previous covpost comment instead of adding a new one")
	if err := viper.BindPFlags(publishCmd.Flags()); err != nil {
		contract.LogFatal("Error binding publish flags", err)
	}

	// Bind all flags of renderCmd to Viper
	renderCmd.Flags().String("changed-file", "", "Comma-separated list of changed file paths")
	renderCmd.Flags().String("repo-path", ".", "Path to the Git repository used with --base-ref")
	renderCmd.Flags().String("base-ref", "", "Base Git reference to diff changed files from")
	renderCmd.Flags().String("target-ref", "", "Target Git reference to diff changed files to (default HEAD)")
	if err := viper.BindPFlags(renderCmd.Flags()); err != nil {
		contract.LogFatal("Error binding render flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
