package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// CommentService keeps a single bot-authored comment per pull request.
type CommentService struct {
	ghClient driven.GitHubClient
	botUser  string
}

// NewCommentService creates a CommentService that recognizes its own comments
// by the botUser login.
func NewCommentService(ghClient driven.GitHubClient, botUser string) *CommentService {
	return &CommentService{ghClient: ghClient, botUser: botUser}
}

// Upsert replaces the body of the bot's existing comment on issue, or creates
// one when none exists. If the existing comments cannot be listed nothing is
// written, so a failed lookup never produces a duplicate.
func (s *CommentService) Upsert(ctx context.Context, issue model.IssueRef, body string) (*model.ReviewComment, error) {
	comments, err := s.ghClient.ListIssueComments(ctx, issue)
	if err != nil {
		return nil, fmt.Errorf("listing comments on %s: %w", issue, err)
	}

	for _, c := range comments {
		if c.Author != s.botUser {
			continue
		}
		slog.Info("found existing bot comment", "repo", issue.FullName(), "pr", issue.Number, "comment", c.ID)
		updated, err := s.ghClient.EditIssueComment(ctx, issue, c.ID, body)
		if err != nil {
			return nil, fmt.Errorf("editing comment %d on %s: %w", c.ID, issue, err)
		}
		return updated, nil
	}

	created, err := s.ghClient.CreateIssueComment(ctx, issue, body)
	if err != nil {
		return nil, fmt.Errorf("creating comment on %s: %w", issue, err)
	}
	return created, nil
}

// Publish implements driven.ReportSink by upserting the report on the event's
// pull request.
func (s *CommentService) Publish(ctx context.Context, ev model.InboundEvent, body string) error {
	issue, err := model.ParseIssueURL(ev.IssueURL)
	if err != nil {
		return err
	}

	comment, err := s.Upsert(ctx, issue, body)
	if err != nil {
		slog.Error("failed to comment on pull request", "repo", issue.FullName(), "pr", issue.Number, "error", err)
		return err
	}

	slog.Info("commented sprite diff", "repo", issue.FullName(), "pr", issue.Number, "url", comment.HTMLURL)
	return nil
}
