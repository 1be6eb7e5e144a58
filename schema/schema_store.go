package schema

import "time"

// RunInfo describes the context of a recorded run.
type RunInfo struct {
	RunTime    time.Time
	Repository string
	Branch     string
	ThreadURL  string
}

// RunRecord represents a row from the covpost_runs table.
type RunRecord struct {
	RunID         int64
	RunTime       time.Time
	Repository    string
	Branch        string
	ThreadURL     *string
	TotalCoverage *string // JSON-encoded []TotalCoverageRow
	ChangedFiles  int32
}

// FileCoverageRecord represents a row from the covpost_file_coverage table.
type FileCoverageRecord struct {
	RunID       int64
	FilePath    string
	CounterType string
	Covered     float64
	Missed      float64
}
