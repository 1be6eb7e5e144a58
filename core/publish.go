package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/internal/outwriter"
	"github.com/huangsam/covpost/internal/review"
	"github.com/huangsam/covpost/schema"
)

// PullLister is the part of the review client needed to resolve a thread from a branch.
type PullLister interface {
	ListPullRequests(ctx context.Context, repository string) ([]schema.PullRequest, error)
}

// FindThreadURL returns the URL of the open pull request whose head branch matches branch.
// A fully qualified ref ("refs/heads/feature/b") is compared without its prefix first and
// then by its last path segment. No match yields review.ErrThreadNotFound.
func FindThreadURL(ctx context.Context, client PullLister, repository, branch string) (string, error) {
	pulls, err := client.ListPullRequests(ctx, repository)
	if err != nil {
		return "", err
	}

	short := strings.TrimPrefix(branch, "refs/heads/")
	for _, p := range pulls {
		if p.HeadRef == short {
			return p.URL, nil
		}
	}

	last := short[strings.LastIndex(short, "/")+1:]
	for _, p := range pulls {
		if p.HeadRef == last {
			return p.URL, nil
		}
	}
	return "", fmt.Errorf("%w %q in %s", review.ErrThreadNotFound, branch, repository)
}

// PostComment publishes body on the thread. With updateExisting set, the first comment carrying
// contract.CommentMarker is edited in place; otherwise a new comment is created.
func PostComment(ctx context.Context, client contract.ReviewClient, threadURL, body string, updateExisting bool) (schema.IssueComment, error) {
	if updateExisting {
		body = withMarker(body)
		comments, err := client.ListComments(ctx, threadURL)
		if err != nil {
			contract.LogWarn("Failed to list existing comments, posting a new one", err)
		}
		for _, c := range comments {
			if strings.Contains(c.Body, contract.CommentMarker) && c.URL != "" {
				return client.UpdateComment(ctx, c.URL, body)
			}
		}
	}
	return client.CreateComment(ctx, threadURL, body)
}

func withMarker(body string) string {
	if strings.Contains(body, contract.CommentMarker) {
		return body
	}
	return body + "\n" + contract.CommentMarker + "\n"
}

// ExecutePublish runs the whole pipeline for one pull request:
// parse, resolve the thread, correlate, render, print and post.
func ExecutePublish(ctx context.Context, cfg *contract.Config, client contract.ReviewClient, mgr contract.StoreManager) error {
	report, err := LoadReport(cfg.ReportPath)
	if err != nil {
		return err
	}
	total := TotalCoverage(report)

	threadURL := cfg.ThreadURL
	if threadURL == "" {
		threadURL, err = FindThreadURL(ctx, client, cfg.Repository, cfg.Branch)
		if err != nil {
			if errors.Is(err, review.ErrThreadNotFound) {
				contract.LogInfo("Can't find pull request, nothing to publish")
			} else {
				contract.LogWarn("Pull request lookup failed, nothing to publish", err)
			}
			return nil
		}
	}
	contract.Logger.Info().Str("thread", threadURL).Msg("publishing coverage")

	files, err := BuildChangedFilesCoverage(ctx, report, client, threadURL)
	if err != nil {
		logCorrelationFailure(err)
		files = nil
	}

	result := schema.CoverageResult{Total: total, ChangedFiles: files}
	body := outwriter.RenderComment(result.Total, result.ChangedFiles)
	if err := outwriter.PrintComment(body, cfg); err != nil {
		return err
	}

	recordHistory(mgr, cfg, threadURL, result)

	if cfg.DryRun {
		contract.LogInfo("Dry run, comment not posted")
		return nil
	}
	comment, err := PostComment(ctx, client, threadURL, body, cfg.UpdateExisting)
	if err != nil {
		contract.LogWarn("Failed to post coverage comment", err)
		return nil
	}
	contract.Logger.Info().Int64("id", comment.ID).Str("url", comment.URL).Msg("coverage comment posted")
	return nil
}

// ExecuteRender runs the pipeline locally and writes the result in the configured output format.
// Changed files come from cfg.ChangedFiles or, when a base ref is set, from local git.
func ExecuteRender(ctx context.Context, cfg *contract.Config, client contract.GitClient) error {
	result, err := RenderResult(ctx, cfg, client)
	if err != nil {
		return err
	}
	return outwriter.WriteCoverage(result, cfg)
}

// RenderResult computes the coverage result for the render command without writing it.
func RenderResult(ctx context.Context, cfg *contract.Config, client contract.GitClient) (schema.CoverageResult, error) {
	report, err := LoadReport(cfg.ReportPath)
	if err != nil {
		return schema.CoverageResult{}, err
	}
	result := schema.CoverageResult{Total: TotalCoverage(report)}

	changed := ClassifyPaths(cfg.ChangedFiles)
	if cfg.BaseRef != "" {
		local, err := LocalChangedFiles(ctx, client, cfg.RepoPath, cfg.BaseRef, cfg.TargetRef)
		if err != nil {
			contract.LogWarn("Failed to list local changes", err)
		}
		changed = append(changed, local...)
	}

	files, err := CorrelateChangedFiles(report, changed)
	if err != nil {
		logCorrelationFailure(err)
		return result, nil
	}
	result.ChangedFiles = files
	return result, nil
}

// logCorrelationFailure reports why the changed-file section is omitted.
func logCorrelationFailure(err error) {
	if errors.Is(err, ErrNoChangedFiles) {
		contract.LogInfo("No changed files under a recognized source root")
		return
	}
	contract.LogWarn("Changed-file coverage unavailable, publishing totals only", err)
}

// recordHistory stores the run when a history backend is configured. Failures are logged only.
func recordHistory(mgr contract.StoreManager, cfg *contract.Config, threadURL string, result schema.CoverageResult) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}
	info := schema.RunInfo{
		RunTime:    time.Now(),
		Repository: cfg.Repository,
		Branch:     cfg.Branch,
		ThreadURL:  threadURL,
	}
	runID, err := store.BeginRun(info, result.Total)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	for _, f := range result.ChangedFiles {
		if err := store.RecordFileCoverage(runID, f); err != nil {
			contract.LogWarn("Failed to record file coverage", err)
		}
	}
	if err := store.EndRun(runID, result.FileCount()); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}
