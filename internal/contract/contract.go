// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/covpost/schema"
)

// ReviewClient defines the review-platform operations covpost depends on.
// This allows the pipeline to be tested without a real REST endpoint.
type ReviewClient interface {
	// ListPullRequests returns the open pull requests of a repository (owner/name).
	ListPullRequests(ctx context.Context, repository string) ([]schema.PullRequest, error)

	// ListPullRequestFiles returns the changed file paths of the pull request at threadURL.
	ListPullRequestFiles(ctx context.Context, threadURL string) ([]string, error)

	// ListComments returns the general-discussion comments of the pull request at threadURL.
	ListComments(ctx context.Context, threadURL string) ([]schema.IssueComment, error)

	// CreateComment posts a new general-discussion comment on the pull request at threadURL.
	CreateComment(ctx context.Context, threadURL string, body string) (schema.IssueComment, error)

	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, commentURL string, body string) (schema.IssueComment, error)
}

// GitClient defines the local Git operations used by the render command.
type GitClient interface {
	// Run executes a git command and returns its output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// ListChangedFiles returns the files changed between baseRef and targetRef.
	ListChangedFiles(ctx context.Context, repoPath string, baseRef string, targetRef string) ([]string, error)
}

// StoreManager defines the interface for managing persistence stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking runs and their coverage results.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(info schema.RunInfo, total []schema.TotalCoverageRow) (int64, error)

	// RecordFileCoverage stores the per-counter sums for one changed file
	RecordFileCoverage(runID int64, file schema.FileCoverage) error

	// EndRun updates the run with the number of changed files that had coverage
	EndRun(runID int64, changedFiles int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFileCoverage retrieves every recorded file coverage row
	GetAllFileCoverage() ([]schema.FileCoverageRecord, error)

	// Close closes the underlying connection
	Close() error
}
