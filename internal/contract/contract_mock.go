package contract

import (
	"context"

	"github.com/huangsam/covpost/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	callArgs := []any{ctx, repoPath}
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// ListChangedFiles implements the GitClient interface.
func (m *MockGitClient) ListChangedFiles(ctx context.Context, repoPath string, baseRef string, targetRef string) ([]string, error) {
	ret := m.Called(ctx, repoPath, baseRef, targetRef)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// MockReviewClient is a mock implementation of ReviewClient for testing.
type MockReviewClient struct {
	mock.Mock
}

var _ ReviewClient = &MockReviewClient{} // Compile-time check

// ListPullRequests implements the ReviewClient interface.
func (m *MockReviewClient) ListPullRequests(ctx context.Context, repository string) ([]schema.PullRequest, error) {
	ret := m.Called(ctx, repository)
	pulls, _ := ret.Get(0).([]schema.PullRequest)
	return pulls, ret.Error(1)
}

// ListPullRequestFiles implements the ReviewClient interface.
func (m *MockReviewClient) ListPullRequestFiles(ctx context.Context, threadURL string) ([]string, error) {
	ret := m.Called(ctx, threadURL)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// ListComments implements the ReviewClient interface.
func (m *MockReviewClient) ListComments(ctx context.Context, threadURL string) ([]schema.IssueComment, error) {
	ret := m.Called(ctx, threadURL)
	comments, _ := ret.Get(0).([]schema.IssueComment)
	return comments, ret.Error(1)
}

// CreateComment implements the ReviewClient interface.
func (m *MockReviewClient) CreateComment(ctx context.Context, threadURL string, body string) (schema.IssueComment, error) {
	ret := m.Called(ctx, threadURL, body)
	comment, _ := ret.Get(0).(schema.IssueComment)
	return comment, ret.Error(1)
}

// UpdateComment implements the ReviewClient interface.
func (m *MockReviewClient) UpdateComment(ctx context.Context, commentURL string, body string) (schema.IssueComment, error) {
	ret := m.Called(ctx, commentURL, body)
	comment, _ := ret.Get(0).(schema.IssueComment)
	return comment, ret.Error(1)
}
