package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/covpost/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		setupMock   func(*MockGitClient)
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			input: &ConfigRawInput{
				ReportPathStr: "build/jacoco.xml",
				Output:        "markdown",
				Color:         "yes",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "build/jacoco.xml", cfg.ReportPath)
				assert.Equal(t, schema.MarkdownOut, cfg.Output)
				assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name: "empty output falls back to markdown",
			input: &ConfigRawInput{
				Color: "no",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.MarkdownOut, cfg.Output)
				assert.False(t, cfg.UseColors)
			},
		},
		{
			name: "invalid output",
			input: &ConfigRawInput{
				Output: "yaml",
				Color:  "yes",
			},
			expectError: true,
		},
		{
			name: "invalid color",
			input: &ConfigRawInput{
				Color: "sometimes",
			},
			expectError: true,
		},
		{
			name: "negative width",
			input: &ConfigRawInput{
				Color: "yes",
				Width: -1,
			},
			expectError: true,
		},
		{
			name: "trims api url and thread url",
			input: &ConfigRawInput{
				Color:     "yes",
				APIURL:    "https://api.github.com/",
				ThreadURL: "https://api.github.com/repos/o/r/pulls/7/",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.github.com", cfg.APIURL)
				assert.Equal(t, "https://api.github.com/repos/o/r/pulls/7", cfg.ThreadURL)
			},
		},
		{
			name: "changed files are split",
			input: &ConfigRawInput{
				Color:       "yes",
				ChangedFile: "src/main/java/A.java,src/main/kotlin/B.kt",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"src/main/java/A.java", "src/main/kotlin/B.kt"}, cfg.ChangedFiles)
			},
		},
		{
			name: "invalid history backend",
			input: &ConfigRawInput{
				Color:          "yes",
				HistoryBackend: "oracle",
			},
			expectError: true,
		},
		{
			name: "mysql backend without connection string",
			input: &ConfigRawInput{
				Color:          "yes",
				HistoryBackend: "mysql",
			},
			expectError: true,
		},
		{
			name: "target ref without base ref",
			input: &ConfigRawInput{
				Color:     "yes",
				TargetRef: "HEAD",
			},
			expectError: true,
		},
		{
			name: "base ref resolves repo root and defaults target",
			input: &ConfigRawInput{
				Color:   "yes",
				BaseRef: "origin/main",
			},
			setupMock: func(m *MockGitClient) {
				m.On("GetRepoRoot", context.Background(), ".").Return("/mock/repo/root", nil)
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
				assert.Equal(t, "HEAD", cfg.TargetRef)
			},
		},
		{
			name: "base ref outside a repository",
			input: &ConfigRawInput{
				Color:    "yes",
				BaseRef:  "origin/main",
				RepoPath: "/tmp/nowhere",
			},
			setupMock: func(m *MockGitClient) {
				m.On("GetRepoRoot", context.Background(), "/tmp/nowhere").Return("", errors.New("not a git repository"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockGitClient)
			if tt.setupMock != nil {
				tt.setupMock(client)
			}
			cfg := &Config{}
			err := ProcessAndValidate(context.Background(), cfg, client, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestApplyPublishArgs(t *testing.T) {
	t.Run("all six positionals", func(t *testing.T) {
		input := &ConfigRawInput{Token: "from-env"}
		ApplyPublishArgs(input, []string{"report.xml", "tok", "https://api", "o/r", "refs/heads/feature/b", "https://api/repos/o/r/pulls/1"})
		assert.Equal(t, "report.xml", input.ReportPathStr)
		assert.Equal(t, "tok", input.Token)
		assert.Equal(t, "https://api", input.APIURL)
		assert.Equal(t, "o/r", input.Repository)
		assert.Equal(t, "refs/heads/feature/b", input.Branch)
		assert.Equal(t, "https://api/repos/o/r/pulls/1", input.ThreadURL)
	})

	t.Run("partial positionals keep other sources", func(t *testing.T) {
		input := &ConfigRawInput{Token: "from-env", Repository: "o/r"}
		ApplyPublishArgs(input, []string{"report.xml"})
		assert.Equal(t, "report.xml", input.ReportPathStr)
		assert.Equal(t, "from-env", input.Token)
		assert.Equal(t, "o/r", input.Repository)
	})
}

func TestRequirePublishInputs(t *testing.T) {
	valid := &Config{
		ReportPath: "report.xml",
		Token:      "tok",
		APIURL:     "https://api.github.com",
		Repository: "owner/repo",
		Branch:     "feature/b",
	}
	require.NoError(t, RequirePublishInputs(valid))

	missing := valid.Clone()
	missing.Token = ""
	missing.Branch = " "
	err := RequirePublishInputs(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "token, branch")

	badRepo := valid.Clone()
	badRepo.Repository = "repo"
	assert.ErrorIs(t, RequirePublishInputs(badRepo), ErrUsage)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/covpost"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=covpost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "postgres://u@localhost/covpost"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=covpost"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ChangedFiles: []string{"a"}}
	clone := cfg.Clone()
	clone.ChangedFiles[0] = "b"
	assert.Equal(t, "a", cfg.ChangedFiles[0])
}
