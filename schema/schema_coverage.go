package schema

// CounterCoverage holds the running sums for one counter type and the formatted percentage.
type CounterCoverage struct {
	Covered  float64 `json:"covered"`
	Missed   float64 `json:"missed"`
	Coverage string  `json:"coverage"`
}

// FileCoverage is the aggregate for one changed file, keyed by canonical path.
type FileCoverage struct {
	Path     string                          `json:"path"`
	Counters map[CounterType]CounterCoverage `json:"counters"`
}

// TotalCoverageRow is one row of the whole-report table.
type TotalCoverageRow struct {
	Type     CounterType `json:"type"`
	Covered  float64     `json:"covered"`
	Missed   float64     `json:"missed"`
	Coverage string      `json:"coverage"`
}

// CoverageResult bundles everything one run renders and publishes.
type CoverageResult struct {
	Total        []TotalCoverageRow `json:"total"`
	ChangedFiles []FileCoverage     `json:"changed_files,omitempty"`
}

// FileCount returns the number of changed files with coverage data.
func (r CoverageResult) FileCount() int {
	return len(r.ChangedFiles)
}
