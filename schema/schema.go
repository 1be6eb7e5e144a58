// Package schema has configs, models and global variables for all parts of covpost.
package schema

// Counter is a single typed coverage counter read from the report.
type Counter struct {
	Type    CounterType `json:"type"`
	Covered float64     `json:"covered"`
	Missed  float64     `json:"missed"`
}

// ClassEntry is a compiled class inside a report package.
type ClassEntry struct {
	Name           string    `json:"name"`            // Internal class name, e.g. com/x/Foo or com.x.Foo
	SourceFileName string    `json:"source_filename"` // Leaf source file name, e.g. Foo.java
	Counters       []Counter `json:"counters"`
}

// PackageEntry groups the classes of one package.
type PackageEntry struct {
	Name    string       `json:"name"`
	Classes []ClassEntry `json:"classes"`
}

// Report is the in-memory coverage tree for one run.
type Report struct {
	Name     string         `json:"name"`
	Packages []PackageEntry `json:"packages"`
	Counters []Counter      `json:"counters"` // Root-level aggregate counters
}

// ChangedFile is a path from the pull request mapped onto its source root.
// Language and CanonicalPath are empty when no source root matches.
type ChangedFile struct {
	OriginalPath  string   `json:"original_path"`
	Language      Language `json:"language,omitempty"`
	CanonicalPath string   `json:"canonical_path,omitempty"`
}

// Recognized reports whether the file maps onto a known source root.
func (c ChangedFile) Recognized() bool {
	return c.CanonicalPath != ""
}
