package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/internal/iocache"
	"github.com/huangsam/covpost/internal/review"
	"github.com/huangsam/covpost/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var openPulls = []schema.PullRequest{
	{Number: 1, URL: "https://api/repos/o/r/pulls/1", HeadRef: "feature/a"},
	{Number: 2, URL: "https://api/repos/o/r/pulls/2", HeadRef: "feature/b"},
}

func TestFindThreadURL(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		branch string
		want   string
	}{
		{"refs/heads/feature/b", "https://api/repos/o/r/pulls/2"},
		{"feature/a", "https://api/repos/o/r/pulls/1"},
		{"refs/heads/topic", "https://api/repos/o/r/pulls/3"},
	}
	pulls := append(openPulls, schema.PullRequest{Number: 3, URL: "https://api/repos/o/r/pulls/3", HeadRef: "topic"})
	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			client := new(contract.MockReviewClient)
			client.On("ListPullRequests", ctx, "o/r").Return(pulls, nil)
			got, err := FindThreadURL(ctx, client, "o/r", tt.branch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindThreadURLLastSegmentFallback(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockReviewClient)
	client.On("ListPullRequests", ctx, "o/r").Return([]schema.PullRequest{{URL: "u", HeadRef: "b"}}, nil)

	got, err := FindThreadURL(ctx, client, "o/r", "refs/heads/feature/b")
	require.NoError(t, err)
	assert.Equal(t, "u", got)
}

func TestFindThreadURLNotFound(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockReviewClient)
	client.On("ListPullRequests", ctx, "o/r").Return(openPulls, nil)

	_, err := FindThreadURL(ctx, client, "o/r", "feature/c")
	assert.ErrorIs(t, err, review.ErrThreadNotFound)

	failing := new(contract.MockReviewClient)
	failing.On("ListPullRequests", ctx, "o/r").Return(nil, &review.APIError{StatusCode: 401, Body: "Bad credentials"})
	_, err = FindThreadURL(ctx, failing, "o/r", "feature/a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, review.ErrThreadNotFound)
}

func TestPostComment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates by default", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("CreateComment", ctx, "thread", "body").Return(schema.IssueComment{ID: 1}, nil)
		c, err := PostComment(ctx, client, "thread", "body", false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.ID)
		client.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything)
	})

	t.Run("updates marked comment", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("ListComments", ctx, "thread").Return([]schema.IssueComment{
			{ID: 1, URL: "c1", Body: "unrelated"},
			{ID: 2, URL: "c2", Body: "old\n" + contract.CommentMarker},
		}, nil)
		client.On("UpdateComment", ctx, "c2", mock.MatchedBy(func(body string) bool {
			return strings.HasPrefix(body, "body") && strings.Contains(body, contract.CommentMarker)
		})).Return(schema.IssueComment{ID: 2}, nil)
		c, err := PostComment(ctx, client, "thread", "body", true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), c.ID)
		client.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates marked comment when none exists", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("ListComments", ctx, "thread").Return(nil, errors.New("boom"))
		client.On("CreateComment", ctx, "thread", "body\n"+contract.CommentMarker+"\n").Return(schema.IssueComment{ID: 3}, nil)
		_, err := PostComment(ctx, client, "thread", "body", true)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})
}

func publishConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		ReportPath: "testdata/jacoco.xml",
		Repository: "o/r",
		Branch:     "refs/heads/feature/b",
		OutputFile: filepath.Join(t.TempDir(), "comment.md"),
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

func TestExecutePublish(t *testing.T) {
	ctx := context.Background()
	cfg := publishConfig(t)
	thread := "https://api/repos/o/r/pulls/2"

	client := new(contract.MockReviewClient)
	client.On("ListPullRequests", ctx, "o/r").Return(openPulls, nil)
	client.On("ListPullRequestFiles", ctx, thread).Return([]string{"src/main/java/com/x/Foo.java"}, nil)
	client.On("CreateComment", ctx, thread, mock.AnythingOfType("string")).Return(schema.IssueComment{ID: 9}, nil)

	require.NoError(t, ExecutePublish(ctx, cfg, client, nil))
	client.AssertExpectations(t)

	printed := readOutput(t, cfg)
	posted := client.Calls[len(client.Calls)-1].Arguments.String(2)
	assert.Equal(t, printed, posted)
	assert.Contains(t, posted, "|INSTRUCTION|50% (15/30)|")
	assert.Contains(t, posted, "## Changed File Coverage:\n")
	assert.Contains(t, posted, "|com/x/Foo.java|75% (15/20)|")
}

func TestExecutePublishExplicitThreadZeroChangedFiles(t *testing.T) {
	ctx := context.Background()
	cfg := publishConfig(t)
	cfg.ThreadURL = "https://api/repos/o/r/pulls/5"

	client := new(contract.MockReviewClient)
	client.On("ListPullRequestFiles", ctx, cfg.ThreadURL).Return([]string{}, nil)
	client.On("CreateComment", ctx, cfg.ThreadURL, mock.AnythingOfType("string")).Return(schema.IssueComment{}, nil)

	require.NoError(t, ExecutePublish(ctx, cfg, client, nil))
	client.AssertNotCalled(t, "ListPullRequests", mock.Anything, mock.Anything)

	printed := readOutput(t, cfg)
	assert.True(t, strings.HasPrefix(printed, "## Total Test Coverage:\n"))
	assert.NotContains(t, printed, "Changed File")
}

func TestExecutePublishNoThread(t *testing.T) {
	ctx := context.Background()
	cfg := publishConfig(t)
	cfg.Branch = "feature/none"

	client := new(contract.MockReviewClient)
	client.On("ListPullRequests", ctx, "o/r").Return(openPulls, nil)

	require.NoError(t, ExecutePublish(ctx, cfg, client, nil))
	client.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "ListPullRequestFiles", mock.Anything, mock.Anything)
}

func TestExecutePublishDryRunRecordsHistory(t *testing.T) {
	ctx := context.Background()
	cfg := publishConfig(t)
	cfg.DryRun = true
	cfg.ThreadURL = "https://api/repos/o/r/pulls/2"

	client := new(contract.MockReviewClient)
	client.On("ListPullRequestFiles", ctx, cfg.ThreadURL).Return([]string{"src/main/kotlin/com/x/Bar.kt"}, nil)

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.AnythingOfType("schema.RunInfo"), mock.Anything).Return(int64(7), nil)
	store.On("RecordFileCoverage", int64(7), mock.AnythingOfType("schema.FileCoverage")).Return(nil)
	store.On("EndRun", int64(7), 1).Return(nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetHistoryStore").Return(store)

	require.NoError(t, ExecutePublish(ctx, cfg, client, mgr))
	client.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	assert.Contains(t, readOutput(t, cfg), "com/x/Bar.kt")
}

func TestExecutePublishHistoryFailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	cfg := publishConfig(t)
	cfg.ThreadURL = "https://api/repos/o/r/pulls/2"

	client := new(contract.MockReviewClient)
	client.On("ListPullRequestFiles", ctx, cfg.ThreadURL).Return(nil, errors.New("boom"))
	client.On("CreateComment", ctx, cfg.ThreadURL, mock.AnythingOfType("string")).Return(schema.IssueComment{}, nil)

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetHistoryStore").Return(store)

	require.NoError(t, ExecutePublish(ctx, cfg, client, mgr))
	client.AssertExpectations(t)
}

func TestExecutePublishBadReport(t *testing.T) {
	cfg := publishConfig(t)
	cfg.ReportPath = "testdata/missing.xml"
	client := new(contract.MockReviewClient)
	assert.Error(t, ExecutePublish(context.Background(), cfg, client, nil))
	client.AssertNotCalled(t, "ListPullRequests", mock.Anything, mock.Anything)
}

func TestRenderResult(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit changed files", func(t *testing.T) {
		cfg := &contract.Config{
			ReportPath:   "testdata/jacoco.xml",
			ChangedFiles: []string{"src/main/java/com/x/Foo.java"},
		}
		result, err := RenderResult(ctx, cfg, new(contract.MockGitClient))
		require.NoError(t, err)
		assert.Len(t, result.Total, 4)
		require.Len(t, result.ChangedFiles, 1)
	})

	t.Run("local git range", func(t *testing.T) {
		git := new(contract.MockGitClient)
		git.On("ListChangedFiles", ctx, "/repo", "main", "HEAD").Return([]string{"src/main/kotlin/com/x/Bar.kt"}, nil)
		cfg := &contract.Config{ReportPath: "testdata/jacoco.xml", RepoPath: "/repo", BaseRef: "main", TargetRef: "HEAD"}
		result, err := RenderResult(ctx, cfg, git)
		require.NoError(t, err)
		require.Len(t, result.ChangedFiles, 1)
		assert.Equal(t, "0% (0/3)", result.ChangedFiles[0].Counters[schema.LineCounter].Coverage)
	})

	t.Run("unrecognized files degrade", func(t *testing.T) {
		cfg := &contract.Config{ReportPath: "testdata/jacoco.xml", ChangedFiles: []string{"README.md"}}
		result, err := RenderResult(ctx, cfg, new(contract.MockGitClient))
		require.NoError(t, err)
		assert.Empty(t, result.ChangedFiles)
	})
}

func TestExecuteRender(t *testing.T) {
	cfg := &contract.Config{
		ReportPath: "testdata/jacoco.xml",
		Output:     schema.CSVOut,
		OutputFile: filepath.Join(t.TempDir(), "out.csv"),
	}
	require.NoError(t, ExecuteRender(context.Background(), cfg, new(contract.MockGitClient)))
	assert.Contains(t, readOutput(t, cfg), "total,,INSTRUCTION,15,15,50% (15/30)")
}
