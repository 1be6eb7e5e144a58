// Package parquet exports recorded coverage history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/covpost/schema"
	"github.com/parquet-go/parquet-go"
)

// Run maps to the covpost_runs table.
type Run struct {
	RunID      int64     `parquet:"run_id,snappy"`
	RunTime    time.Time `parquet:"run_time,snappy"`
	Repository string    `parquet:"repository,snappy"`
	Branch     string    `parquet:"branch,snappy"`

	// ThreadURL is the pull request the comment targeted (nullable)
	ThreadURL *string `parquet:"thread_url,optional,snappy"`

	// TotalCoverage is the JSON-encoded total table (nullable)
	TotalCoverage *string `parquet:"total_coverage,optional,snappy"`

	ChangedFiles int32 `parquet:"changed_files,snappy"`
}

// FileCoverage maps to the covpost_file_coverage table: one row per file and counter type.
type FileCoverage struct {
	RunID       int64   `parquet:"run_id,snappy"`
	FilePath    string  `parquet:"file_path,snappy"`
	CounterType string  `parquet:"counter_type,snappy,dict"`
	Covered     float64 `parquet:"covered,snappy"`
	Missed      float64 `parquet:"missed,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileCoverageParquet writes file coverage rows to a Parquet file.
func WriteFileCoverageParquet(data []FileCoverage, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts store records for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:         r.RunID,
			RunTime:       r.RunTime,
			Repository:    r.Repository,
			Branch:        r.Branch,
			ThreadURL:     r.ThreadURL,
			TotalCoverage: r.TotalCoverage,
			ChangedFiles:  r.ChangedFiles,
		}
	}
	return result
}

// ConvertFileCoverageRecords converts store records for Parquet export.
func ConvertFileCoverageRecords(records []schema.FileCoverageRecord) []FileCoverage {
	result := make([]FileCoverage, len(records))
	for i, r := range records {
		result[i] = FileCoverage{
			RunID:       r.RunID,
			FilePath:    r.FilePath,
			CounterType: r.CounterType,
			Covered:     r.Covered,
			Missed:      r.Missed,
		}
	}
	return result
}
