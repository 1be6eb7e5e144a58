package schema

// PullRequest is the subset of a review-platform pull request that covpost consumes.
type PullRequest struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	HeadRef string `json:"head_ref"`
}

// IssueComment is a general-discussion comment on a pull request.
type IssueComment struct {
	ID   int64  `json:"id"`
	URL  string `json:"url"`
	Body string `json:"body"`
}
