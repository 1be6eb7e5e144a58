package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/internal/iocache"
	"github.com/huangsam/covpost/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyStoreSetup loads history config and opens the store.
func historyStoreSetup(_ *cobra.Command, _ []string) error {
	if err := historySetup(); err != nil {
		return err
	}
	return iocache.InitStores(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// historyMigrateSetup loads history config without opening the store,
// so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyCmd focused on history data management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup. This avoids report and Git validation for simple store operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded coverage history and exports",
	Long: `Manage the coverage history recorded by publish runs.

When a history backend is configured, every publish run stores:
- Run metadata (time, repository, branch, pull request)
- The total coverage table
- Per changed file sums for instruction, line and method counters

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  covpost history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  covpost history export --history-backend sqlite --output-file coverage`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection state, number of recorded runs, the newest and
oldest run times and table sizes.

Examples:
  covpost history status --history-backend sqlite`,
	PreRunE: historyStoreSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetHistoryStore()
		if store == nil {
			iocache.PrintHistoryStatus(os.Stdout, schema.HistoryStatus{Backend: string(cfg.HistoryBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs and file coverage rows to two Parquet files:
  <output-file>.runs.parquet
  <output-file>.file_coverage.parquet

Requires: --output-file parameter

Examples:
  covpost history export --history-backend sqlite --output-file coverage
  duckdb -c "SELECT * FROM read_parquet('coverage.runs.parquet') LIMIT 10"`,
	PreRunE: historyStoreSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportHistory(storeManager.GetHistoryStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history data", err)
		}
	},
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded coverage history",
	Long: `Delete all stored runs and file coverage rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  covpost history export --history-backend sqlite --output-file backup
  covpost history clear --history-backend sqlite`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history data", err)
		}
		fmt.Println("History data cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  covpost history migrate --history-backend postgresql --history-db-connect "$DSN"

  # Rollback everything
  covpost history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !result.Changed {
			fmt.Printf("History schema already at version %d.\n", result.ToVersion)
			return
		}
		fmt.Printf("History schema migrated from version %d to %d.\n", result.FromVersion, result.ToVersion)
	},
}
