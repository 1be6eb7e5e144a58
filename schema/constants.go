package schema

// Custom string types for type safety.
type (
	// CounterType represents a unit of coverage measurement in the report.
	CounterType string

	// Language represents a source language recognized in changed-file paths.
	Language string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history tracking.
	DatabaseBackend string
)

// Counter types emitted by the coverage report.
const (
	InstructionCounter CounterType = "INSTRUCTION"
	BranchCounter      CounterType = "BRANCH"
	LineCounter        CounterType = "LINE"
	ComplexityCounter  CounterType = "COMPLEXITY"
	MethodCounter      CounterType = "METHOD"
	ClassCounter       CounterType = "CLASS"
)

// All source languages supported.
const (
	JavaLanguage   Language = "java"
	KotlinLanguage Language = "kotlin"
	GroovyLanguage Language = "groovy"
)

// All output modes supported.
const (
	MarkdownOut OutputMode = "markdown" // default
	TextOut     OutputMode = "text"
	JSONOut     OutputMode = "json"
	CSVOut      OutputMode = "csv"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// TotalCounterTypes is the ordered set of counter types shown in the total coverage table.
var TotalCounterTypes = []CounterType{InstructionCounter, LineCounter, MethodCounter, ClassCounter}

// ChangedFileCounterTypes is the ordered set of counter types aggregated per changed file.
var ChangedFileCounterTypes = []CounterType{InstructionCounter, LineCounter, MethodCounter}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	MarkdownOut: {},
	TextOut:     {},
	JSONOut:     {},
	CSVOut:      {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// SourceRoot describes how one language lays out its production sources.
type SourceRoot struct {
	Language  Language
	Extension string // e.g. ".java"
	Marker    string // e.g. "main/java"
}

// SourceRoots is the priority-ordered strategy table used to classify changed files.
var SourceRoots = []SourceRoot{
	{Language: JavaLanguage, Extension: ".java", Marker: "main/java"},
	{Language: KotlinLanguage, Extension: ".kt", Marker: "main/kotlin"},
	{Language: GroovyLanguage, Extension: ".groovy", Marker: "main/groovy"},
}
