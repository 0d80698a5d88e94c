package github

import (
	"time"

	gh "github.com/google/go-github/v61/github"
)

// Issue is the sanitized issue shape returned to callers
type Issue struct {
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	State      string     `json:"state"`
	Repository string     `json:"repository"`
	URL        string     `json:"url"`
	Author     string     `json:"author,omitempty"`
	Assignees  []string   `json:"assignees"`
	Labels     []string   `json:"labels"`
	Comments   int        `json:"comments"`
	Body       string     `json:"body,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
}

// sanitizeIssue maps a go-github issue. repository is used when the payload
// does not embed one, as with single-issue fetches.
func sanitizeIssue(issue *gh.Issue, repository string) Issue {
	out := Issue{
		Number:     issue.GetNumber(),
		Title:      issue.GetTitle(),
		State:      issue.GetState(),
		Repository: repository,
		URL:        issue.GetHTMLURL(),
		Author:     issue.GetUser().GetLogin(),
		Assignees:  make([]string, 0, len(issue.Assignees)),
		Labels:     make([]string, 0, len(issue.Labels)),
		Comments:   issue.GetComments(),
		Body:       issue.GetBody(),
		CreatedAt:  issue.GetCreatedAt().Time,
		UpdatedAt:  issue.GetUpdatedAt().Time,
	}
	if name := issue.GetRepository().GetFullName(); name != "" {
		out.Repository = name
	}
	for _, a := range issue.Assignees {
		out.Assignees = append(out.Assignees, a.GetLogin())
	}
	for _, l := range issue.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	if issue.ClosedAt != nil {
		closed := issue.GetClosedAt().Time
		out.ClosedAt = &closed
	}
	return out
}
