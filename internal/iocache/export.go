package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/internal/parquet"
)

// ExportFiles holds the paths of the files written by ExportHistory.
type ExportFiles struct {
	Runs         string
	FileCoverage string
}

// ExportPaths derives the two Parquet file names from the --output-file prefix.
func ExportPaths(outputFile string) ExportFiles {
	return ExportFiles{
		Runs:         outputFile + ".runs.parquet",
		FileCoverage: outputFile + ".file_coverage.parquet",
	}
}

// ExportHistory writes every recorded run and file coverage row to two Parquet files
// and prints a summary to w.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled; set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no history data found to export")
	}

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	files, err := store.GetAllFileCoverage()
	if err != nil {
		return fmt.Errorf("failed to retrieve file coverage: %w", err)
	}

	paths := ExportPaths(outputFile)
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, paths.Runs); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	parquetFiles := parquet.ConvertFileCoverageRecords(files)
	if err := parquet.WriteFileCoverageParquet(parquetFiles, paths.FileCoverage); err != nil {
		return fmt.Errorf("failed to write file coverage: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Exported %d runs from %s backend to: %s\n", len(parquetRuns), status.Backend, paths.Runs)
	_, _ = fmt.Fprintf(w, "Exported %d file coverage rows to: %s\n", len(parquetFiles), paths.FileCoverage)
	return nil
}
