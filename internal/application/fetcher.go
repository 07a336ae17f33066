package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// ContentFetcher retrieves the base and head revisions of changed sprite files.
type ContentFetcher struct {
	ghClient driven.GitHubClient
}

// NewContentFetcher creates a ContentFetcher backed by the given GitHub client.
func NewContentFetcher(ghClient driven.GitHubClient) *ContentFetcher {
	return &ContentFetcher{ghClient: ghClient}
}

// Fetch retrieves path at one side of the pull request. A 404 is reported as
// Absent, any other failure as Error.
func (f *ContentFetcher) Fetch(ctx context.Context, side model.RepoRef, path string) model.FetchResult {
	content, err := f.ghClient.FetchFile(ctx, side.HTMLURL, side.Ref, path)
	switch {
	case err == nil:
		return model.Present(content)
	case errors.Is(err, driven.ErrNotFound):
		return model.Absent()
	default:
		return model.Failed(err)
	}
}

// Resolve fetches both sides of path and decides whether it should be
// compared. The base side is always resolved first. Paths deleted on the head
// side, paths absent on both sides, and paths with a transport failure on
// either side are skipped.
func (f *ContentFetcher) Resolve(ctx context.Context, ev model.InboundEvent, path string) (model.SpritePair, bool) {
	base := f.Fetch(ctx, ev.Base, path)
	head := f.Fetch(ctx, ev.Head, path)

	if base.State == model.FetchError || head.State == model.FetchError {
		slog.Warn("skipping sprite after fetch failure",
			"repo", ev.Base.FullName,
			"pr", ev.Number,
			"path", path,
			"base", base.State.String(),
			"head", head.State.String(),
			"error", errors.Join(base.Err, head.Err),
		)
		return model.SpritePair{}, false
	}

	if head.State == model.FetchAbsent {
		slog.Debug("sprite deleted on head, skipping", "repo", ev.Base.FullName, "pr", ev.Number, "path", path)
		return model.SpritePair{}, false
	}

	return model.SpritePair{Path: path, Before: base.Content, After: head.Content}, true
}
