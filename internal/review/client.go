// Package review talks to the review platform's REST API: pull requests, their files and comments.
package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
)

const (
	requestTimeout  = 60 * time.Second
	filesPerPage    = 100
	commentsPerPage = 100
)

// ErrThreadNotFound means no open pull request matches the branch.
var ErrThreadNotFound = errors.New("no pull request found for branch")

// APIError is a non-2xx response from the review platform.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client provides access to the review platform REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
	gh      *github.Client
}

var _ contract.ReviewClient = &Client{}

// NewClient creates a client for the API rooted at apiURL, authenticating with token.
func NewClient(apiURL, token string) *Client {
	httpCli := &http.Client{
		Timeout:   requestTimeout,
		Transport: &tokenTransport{token: token, base: http.DefaultTransport},
	}
	c := &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: httpCli,
	}
	c.gh = c.clientFor(c.apiURL)
	return c
}

// tokenTransport sets the "token" authorization scheme the platform documents for PATs.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "token "+t.token)
	return t.base.RoundTrip(r)
}

// clientFor returns a go-github client rooted at base. Thread URLs come back from the API
// as absolute URLs, so requests for a thread go to the host that issued it.
func (c *Client) clientFor(base string) *github.Client {
	base = strings.TrimRight(base, "/")
	if c.gh != nil && base == c.apiURL {
		return c.gh
	}
	gh := github.NewClient(c.httpCli)
	if u, err := url.Parse(base + "/"); err == nil {
		gh.BaseURL = u
	}
	return gh
}

// IssuesURL maps a pull request URL onto the issue URL that owns its discussion comments.
func IssuesURL(threadURL string) string {
	return strings.ReplaceAll(threadURL, "/pulls/", "/issues/")
}

// threadRef is a pull request URL split into the parts go-github addresses it by.
type threadRef struct {
	base   string
	owner  string
	repo   string
	number int
}

// parseThreadURL splits <base>/repos/<owner>/<repo>/(pulls|issues)/<number>.
func parseThreadURL(threadURL string) (threadRef, error) {
	idx := strings.LastIndex(threadURL, "/repos/")
	if idx < 0 {
		return threadRef{}, fmt.Errorf("malformed thread URL %q", threadURL)
	}
	parts := strings.Split(strings.Trim(threadURL[idx+len("/repos/"):], "/"), "/")
	if len(parts) != 4 || (parts[2] != "pulls" && parts[2] != "issues") {
		return threadRef{}, fmt.Errorf("malformed thread URL %q", threadURL)
	}
	number, err := strconv.Atoi(parts[3])
	if err != nil {
		return threadRef{}, fmt.Errorf("malformed thread URL %q: %w", threadURL, err)
	}
	return threadRef{base: threadURL[:idx], owner: parts[0], repo: parts[1], number: number}, nil
}

// parseCommentURL splits <base>/repos/<owner>/<repo>/issues/comments/<id>.
func parseCommentURL(commentURL string) (threadRef, int64, error) {
	idx := strings.LastIndex(commentURL, "/repos/")
	if idx < 0 {
		return threadRef{}, 0, fmt.Errorf("malformed comment URL %q", commentURL)
	}
	parts := strings.Split(strings.Trim(commentURL[idx+len("/repos/"):], "/"), "/")
	if len(parts) != 5 || parts[2] != "issues" || parts[3] != "comments" {
		return threadRef{}, 0, fmt.Errorf("malformed comment URL %q", commentURL)
	}
	id, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return threadRef{}, 0, fmt.Errorf("malformed comment URL %q: %w", commentURL, err)
	}
	return threadRef{base: commentURL[:idx], owner: parts[0], repo: parts[1]}, id, nil
}

func splitRepository(repository string) (string, string, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository %q is not owner/name", repository)
	}
	return owner, name, nil
}

func toComment(ic *github.IssueComment) schema.IssueComment {
	return schema.IssueComment{ID: ic.GetID(), URL: ic.GetURL(), Body: ic.GetBody()}
}

// ListPullRequests lists the open pull requests of repository (owner/name).
func (c *Client) ListPullRequests(ctx context.Context, repository string) ([]schema.PullRequest, error) {
	owner, name, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}
	opts := &github.PullRequestListOptions{State: "open"}
	pulls, _, err := c.gh.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", apiError(http.MethodGet, err))
	}
	out := make([]schema.PullRequest, len(pulls))
	for i, p := range pulls {
		out[i] = schema.PullRequest{Number: p.GetNumber(), URL: p.GetURL(), HeadRef: p.GetHead().GetRef()}
	}
	return out, nil
}

// ListPullRequestFiles lists the file names changed by the pull request. Only the first page is read.
func (c *Client) ListPullRequestFiles(ctx context.Context, threadURL string) ([]string, error) {
	ref, err := parseThreadURL(threadURL)
	if err != nil {
		return nil, err
	}
	opts := &github.ListOptions{PerPage: filesPerPage}
	files, _, err := c.clientFor(ref.base).PullRequests.ListFiles(ctx, ref.owner, ref.repo, ref.number, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pull request files: %w", apiError(http.MethodGet, err))
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.GetFilename()
	}
	return names, nil
}

// ListComments lists every discussion comment of the pull request, following pagination.
func (c *Client) ListComments(ctx context.Context, threadURL string) ([]schema.IssueComment, error) {
	ref, err := parseThreadURL(IssuesURL(threadURL))
	if err != nil {
		return nil, err
	}
	gh := c.clientFor(ref.base)
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: commentsPerPage}}

	var out []schema.IssueComment
	for {
		comments, resp, err := gh.Issues.ListComments(ctx, ref.owner, ref.repo, ref.number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments: %w", apiError(http.MethodGet, err))
		}
		for _, cm := range comments {
			out = append(out, toComment(cm))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// CreateComment posts a new discussion comment on the pull request.
func (c *Client) CreateComment(ctx context.Context, threadURL string, body string) (schema.IssueComment, error) {
	ref, err := parseThreadURL(IssuesURL(threadURL))
	if err != nil {
		return schema.IssueComment{}, err
	}
	comment := &github.IssueComment{Body: github.Ptr(body)}
	created, _, err := c.clientFor(ref.base).Issues.CreateComment(ctx, ref.owner, ref.repo, ref.number, comment)
	if err != nil {
		return schema.IssueComment{}, fmt.Errorf("creating comment: %w", apiError(http.MethodPost, err))
	}
	return toComment(created), nil
}

// UpdateComment replaces the body of the comment at commentURL.
func (c *Client) UpdateComment(ctx context.Context, commentURL string, body string) (schema.IssueComment, error) {
	ref, id, err := parseCommentURL(commentURL)
	if err != nil {
		return schema.IssueComment{}, err
	}
	comment := &github.IssueComment{Body: github.Ptr(body)}
	updated, _, err := c.clientFor(ref.base).Issues.EditComment(ctx, ref.owner, ref.repo, id, comment)
	if err != nil {
		return schema.IssueComment{}, fmt.Errorf("updating comment: %w", apiError(http.MethodPatch, err))
	}
	return toComment(updated), nil
}

// apiError logs a non-2xx response with status and body and turns it into *APIError.
// Transport and decoding errors pass through unchanged.
func apiError(method string, err error) error {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return err
	}
	apiErr := &APIError{Method: method, StatusCode: ghErr.Response.StatusCode, Body: ghErr.Message}
	if ghErr.Response.Request != nil {
		apiErr.URL = ghErr.Response.Request.URL.String()
	}
	contract.Logger.Error().
		Str("method", method).
		Str("url", apiErr.URL).
		Int("code", apiErr.StatusCode).
		Str("body", apiErr.Body).
		Msg("review api request failed")
	return apiErr
}
