package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// ListIssueComments retrieves all PR-level comments (from the Issues API).
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) ListIssueComments(ctx context.Context, issue model.IssueRef) ([]model.ReviewComment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var all []model.ReviewComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, issue.Owner, issue.Repo, issue.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s (page %d): %w", issue, opts.Page, err)
		}

		logRateLimit(resp, issue.FullName()+"/comments", opts.Page, len(comments))

		for _, comment := range comments {
			all = append(all, mapIssueComment(comment, issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreateIssueComment adds a PR-level comment via the Issues API.
func (c *Client) CreateIssueComment(ctx context.Context, issue model.IssueRef, body string) (*model.ReviewComment, error) {
	created, resp, err := c.gh.Issues.CreateComment(ctx, issue.Owner, issue.Repo, issue.Number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return nil, fmt.Errorf("creating comment on %s (status %d): %w", issue, statusCode(err), err)
	}

	logRateLimit(resp, issue.FullName()+"/create-comment", 0, 1)

	comment := mapIssueComment(created, issue)
	return &comment, nil
}

// EditIssueComment replaces the body of an existing issue comment in place.
func (c *Client) EditIssueComment(ctx context.Context, issue model.IssueRef, commentID int64, body string) (*model.ReviewComment, error) {
	edited, resp, err := c.gh.Issues.EditComment(ctx, issue.Owner, issue.Repo, commentID, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return nil, fmt.Errorf("editing comment %d on %s (status %d): %w", commentID, issue, statusCode(err), err)
	}

	logRateLimit(resp, issue.FullName()+"/edit-comment", 0, 1)

	comment := mapIssueComment(edited, issue)
	return &comment, nil
}

// mapIssueComment converts a go-github IssueComment to a domain model ReviewComment.
func mapIssueComment(c *gh.IssueComment, issue model.IssueRef) model.ReviewComment {
	return model.ReviewComment{
		ID:      c.GetID(),
		Issue:   issue,
		Author:  c.GetUser().GetLogin(),
		Body:    c.GetBody(),
		HTMLURL: c.GetHTMLURL(),
	}
}
