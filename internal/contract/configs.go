package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/covpost/schema"
)

// Default values for configuration.
const (
	DefaultOutput         = schema.MarkdownOut
	DefaultHistoryBackend = schema.NoneBackend
	DefaultLogLevel       = "info"
	CommentMarker         = "<!-- covpost:coverage -->"
)

// ErrUsage marks errors caused by missing or malformed process inputs.
var ErrUsage = errors.New("invalid arguments")

// Config holds the runtime configuration for one run.
// This struct is the "final, validated" config handed to every component.
type Config struct {
	ReportPath string

	// Review platform inputs
	Token          string // Please use env var as this is plaintext
	APIURL         string
	Repository     string
	Branch         string
	ThreadURL      string
	DryRun         bool
	UpdateExisting bool

	// Local inputs for the render command
	RepoPath     string
	BaseRef      string
	TargetRef    string
	ChangedFiles []string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ReportPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from publishCmd.Flags() ---
	Token          string `mapstructure:"token"`
	APIURL         string `mapstructure:"api-url"`
	Repository     string `mapstructure:"repository"`
	Branch         string `mapstructure:"branch"`
	ThreadURL      string `mapstructure:"thread-url"`
	DryRun         bool   `mapstructure:"dry-run"`
	UpdateExisting bool   `mapstructure:"update-existing"`

	// --- Fields from renderCmd.Flags() ---
	RepoPath    string `mapstructure:"repo-path"`
	BaseRef     string `mapstructure:"base-ref"`
	TargetRef   string `mapstructure:"target-ref"`
	ChangedFile string `mapstructure:"changed-file"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ChangedFiles != nil {
		clone.ChangedFiles = make([]string, len(c.ChangedFiles))
		copy(clone.ChangedFiles, c.ChangedFiles)
	}
	return &clone
}

// ApplyPublishArgs copies the positional arguments of the publish command onto the raw input:
// report path, token, API base URL, repository, branch and an optional thread URL.
// Positional values take precedence over flags, env and config file.
func ApplyPublishArgs(input *ConfigRawInput, args []string) {
	targets := []*string{&input.ReportPathStr, &input.Token, &input.APIURL, &input.Repository, &input.Branch, &input.ThreadURL}
	for i, arg := range args {
		if i >= len(targets) {
			break
		}
		*targets[i] = arg
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateHistoryBackend(cfg, input); err != nil {
		return err
	}
	if err := resolveLocalRefs(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// RequirePublishInputs checks that every input needed to publish a comment is present.
func RequirePublishInputs(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"report path", cfg.ReportPath},
		{"token", cfg.Token},
		{"api url", cfg.APIURL},
		{"repository", cfg.Repository},
		{"branch", cfg.Branch},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrUsage, strings.Join(missing, ", "))
	}
	if !strings.Contains(cfg.Repository, "/") {
		return fmt.Errorf("%w: repository must be in owner/name form (received %q)", ErrUsage, cfg.Repository)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or be a postgres:// URL")
		}
	}
	return nil
}

// ParseDatabaseBackend maps a raw backend string onto a DatabaseBackend, treating empty as none.
func ParseDatabaseBackend(raw string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(raw) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.ReportPath = strings.TrimSpace(input.ReportPathStr)
	cfg.Token = strings.TrimSpace(input.Token)
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(input.APIURL), "/")
	cfg.Repository = strings.Trim(strings.TrimSpace(input.Repository), "/")
	cfg.Branch = strings.TrimSpace(input.Branch)
	cfg.ThreadURL = strings.TrimRight(strings.TrimSpace(input.ThreadURL), "/")
	cfg.DryRun = input.DryRun
	cfg.UpdateExisting = input.UpdateExisting
	cfg.OutputFile = input.OutputFile
	cfg.ChangedFiles = SplitList(input.ChangedFile)

	if err := SetLogLevel(input.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Width Validation ---
	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be markdown, text, json, csv", input.Output)
	}

	return nil
}

// validateHistoryBackend validates the optional history store configuration.
func validateHistoryBackend(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseDatabaseBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// resolveLocalRefs resolves the repository root when changed files come from local git.
func resolveLocalRefs(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	cfg.BaseRef = strings.TrimSpace(input.BaseRef)
	cfg.TargetRef = strings.TrimSpace(input.TargetRef)

	if cfg.BaseRef == "" {
		if cfg.TargetRef != "" {
			return fmt.Errorf("must specify --base-ref when --target-ref is set")
		}
		return nil
	}
	if cfg.TargetRef == "" {
		cfg.TargetRef = "HEAD"
	}

	repoPath := strings.TrimSpace(input.RepoPath)
	if repoPath == "" {
		repoPath = "."
	}
	root, err := client.GetRepoRoot(ctx, repoPath)
	if err != nil {
		return fmt.Errorf("could not resolve git repository at %q: %w", repoPath, err)
	}
	cfg.RepoPath = root
	return nil
}
