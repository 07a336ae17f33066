package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// ErrNotFound is returned by GitHub read methods when the remote resource
// answered 404.
var ErrNotFound = errors.New("not found")

// GitHubClient defines the driven port for the GitHub interactions the bot needs.
type GitHubClient interface {
	// FetchDiff returns the unified diff behind a pull request's diff URL.
	// Returns ErrNotFound when the diff is unavailable.
	FetchDiff(ctx context.Context, diffURL string) (string, error)

	// FetchFile retrieves the raw content of path at ref in the repository
	// served from repoHTMLURL. Returns ErrNotFound when the file does not
	// exist at that ref.
	FetchFile(ctx context.Context, repoHTMLURL, ref, path string) ([]byte, error)

	// FetchPullRequest builds an event-equivalent view of a pull request, used
	// by the bulk and debug modes. Returns ErrNotFound for unknown PRs.
	FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.InboundEvent, error)

	// ListIssueComments returns every comment on the issue, oldest first.
	ListIssueComments(ctx context.Context, issue model.IssueRef) ([]model.ReviewComment, error)
	// CreateIssueComment adds a new comment to the issue.
	CreateIssueComment(ctx context.Context, issue model.IssueRef, body string) (*model.ReviewComment, error)
	// EditIssueComment replaces the body of an existing comment.
	EditIssueComment(ctx context.Context, issue model.IssueRef, commentID int64, body string) (*model.ReviewComment, error)
}
