package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for history tracking.
const (
	runsTable         = "covpost_runs"
	fileCoverageTable = "covpost_file_coverage"
)

// HistoryStoreImpl implements the HistoryStore interface on top of database/sql.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// driverName maps a backend onto its registered database/sql driver.
func driverName(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// openDB opens and pings the database for backend. An empty SQLite connStr uses the default file.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = GetHistoryDBFilePath()
		}
	case schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	db, err := sql.Open(driverName(backend), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Check that the server is running and the connection string is correct", backend, err)
	}
	return db, nil
}

// NewHistoryStore creates a HistoryStore for the backend. NoneBackend yields a no-op store.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables applies the initial schema from the embedded migrations.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	ddl, err := migrationsFS.ReadFile(fmt.Sprintf("migrations/%s/000001_init.up.sql", backend))
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// quoteTableName quotes an identifier for the backend.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + tableName + "`"
	}
	return `"` + tableName + `"`
}

// placeholders returns n positional parameters for the backend, e.g. "$1, $2" or "?, ?".
func placeholders(n int, backend schema.DatabaseBackend) string {
	parts := make([]string, n)
	for i := range parts {
		if backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// storedTimeLayouts lists the layouts a time column may come back in when the driver does not parse it.
var storedTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"}

// parseStoredTime reads a time column written through formatTime.
func parseStoredTime(raw any) (time.Time, error) {
	var s string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", raw)
	}
	var lastErr error
	for _, layout := range storedTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun inserts a run row with the total coverage and returns its ID.
func (hs *HistoryStoreImpl) BeginRun(info schema.RunInfo, total []schema.TotalCoverageRow) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	totalJSON, err := json.Marshal(total)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal total coverage: %w", err)
	}

	var threadURL *string
	if info.ThreadURL != "" {
		threadURL = &info.ThreadURL
	}

	table := quoteTableName(runsTable, hs.backend)
	args := []any{formatTime(info.RunTime, hs.backend), info.Repository, info.Branch, threadURL, string(totalJSON)}
	query := fmt.Sprintf(`INSERT INTO %s (run_time, repository, branch, thread_url, total_coverage) VALUES (%s)`,
		table, placeholders(len(args), hs.backend))

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		err = hs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordFileCoverage stores one row per tracked counter type of the file.
func (hs *HistoryStoreImpl) RecordFileCoverage(runID int64, file schema.FileCoverage) error {
	if hs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, file_path, counter_type, covered, missed) VALUES (%s)`,
		quoteTableName(fileCoverageTable, hs.backend), placeholders(5, hs.backend))
	for _, t := range schema.ChangedFileCounterTypes {
		c := file.Counters[t]
		if _, err := hs.db.Exec(query, runID, file.Path, string(t), c.Covered, c.Missed); err != nil {
			return fmt.Errorf("failed to insert coverage for %s: %w", file.Path, err)
		}
	}
	return nil
}

// EndRun records how many changed files had coverage.
func (hs *HistoryStoreImpl) EndRun(runID int64, changedFiles int) error {
	if hs.disabled() {
		return nil
	}

	var query string
	if hs.backend == schema.PostgreSQLBackend {
		query = `UPDATE %s SET changed_files = $1 WHERE run_id = $2`
	} else {
		query = `UPDATE %s SET changed_files = ? WHERE run_id = ?`
	}
	if _, err := hs.db.Exec(fmt.Sprintf(query, quoteTableName(runsTable, hs.backend)), changedFiles, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastTime, oldestTime any
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, run_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &lastTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT run_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldestTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		var err error
		if status.LastRunTime, err = parseStoredTime(lastTime); err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		if status.OldestRunTime, err = parseStoredTime(oldestTime); err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}
	}

	for _, table := range []string{runsTable, fileCoverageTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFileRecords = status.TableSizes[fileCoverageTable]
	return status, nil
}

// GetAllRuns retrieves all runs ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, run_time, repository, branch, thread_url, total_coverage, changed_files FROM %s ORDER BY run_id",
		quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var runTime any
		var changedFiles sql.NullInt32
		if err := rows.Scan(&record.RunID, &runTime, &record.Repository, &record.Branch,
			&record.ThreadURL, &record.TotalCoverage, &changedFiles); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if record.RunTime, err = parseStoredTime(runTime); err != nil {
			return nil, fmt.Errorf("failed to parse run_time: %w", err)
		}
		record.ChangedFiles = changedFiles.Int32
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllFileCoverage retrieves all file coverage rows ordered by run, path and counter type.
func (hs *HistoryStoreImpl) GetAllFileCoverage() ([]schema.FileCoverageRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, file_path, counter_type, covered, missed FROM %s ORDER BY run_id, file_path, counter_type",
		quoteTableName(fileCoverageTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file coverage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileCoverageRecord
	for rows.Next() {
		var record schema.FileCoverageRecord
		if err := rows.Scan(&record.RunID, &record.FilePath, &record.CounterType, &record.Covered, &record.Missed); err != nil {
			return nil, fmt.Errorf("failed to scan file coverage: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file coverage: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
