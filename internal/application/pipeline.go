package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// Outcome summarizes how a pipeline run ended.
type Outcome string

const (
	OutcomeNoDiff    Outcome = "no-diff"
	OutcomeNoSprites Outcome = "no-sprites"
	OutcomeNoChanges Outcome = "no-changes"
	OutcomeReported  Outcome = "reported"
	OutcomeFailed    Outcome = "failed"
)

// FragmentWriter stores a rendered per-file block for inspection.
type FragmentWriter interface {
	WriteFragment(number int, spritePath, fragment string) error
}

// Pipeline runs the sprite diff for one pull request event: diff retrieval,
// content fetching, comparison, and report publishing.
type Pipeline struct {
	ghClient    driven.GitHubClient
	fetcher     *ContentFetcher
	reporter    *DiffReporter
	sink        driven.ReportSink
	fragments   FragmentWriter
	concurrency int
}

// NewPipeline creates a Pipeline. concurrency bounds how many sprite files of
// one pull request are fetched and compared at the same time.
func NewPipeline(
	ghClient driven.GitHubClient,
	reporter *DiffReporter,
	sink driven.ReportSink,
	concurrency int,
) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		ghClient:    ghClient,
		fetcher:     NewContentFetcher(ghClient),
		reporter:    reporter,
		sink:        sink,
		concurrency: concurrency,
	}
}

// WithFragments makes the pipeline store every rendered per-file block.
func (p *Pipeline) WithFragments(w FragmentWriter) *Pipeline {
	p.fragments = w
	return p
}

// Run processes ev. Upstream 404s and empty reports end the run without an
// error; only context cancellation and report publishing failures are returned.
func (p *Pipeline) Run(ctx context.Context, ev model.InboundEvent) (Outcome, error) {
	start := time.Now()
	log := slog.With("repo", ev.Base.FullName, "pr", ev.Number, "action", string(ev.Action))

	diff, err := p.ghClient.FetchDiff(ctx, ev.DiffURL)
	if errors.Is(err, driven.ErrNotFound) {
		log.Warn("pull request diff unavailable", "diff_url", ev.DiffURL)
		return OutcomeNoDiff, nil
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetching diff: %w", err)
	}

	paths := ExtractSpritePaths(diff)
	if len(paths) == 0 {
		log.Debug("no sprite changes in diff")
		return OutcomeNoSprites, nil
	}
	log.Info("sprite diff detected", "paths", len(paths))

	blocks := make([]string, len(paths))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			blocks[i] = p.renderPath(ctx, log, ev, path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return OutcomeFailed, fmt.Errorf("sprite diff interrupted: %w", err)
	}

	report := BuildReport(blocks)
	if report == "" {
		log.Info("no sprite states changed", "duration", time.Since(start))
		return OutcomeNoChanges, nil
	}

	if err := p.sink.Publish(ctx, ev, report); err != nil {
		return OutcomeFailed, fmt.Errorf("publishing report: %w", err)
	}

	log.Info("sprite diff reported", "duration", time.Since(start))
	return OutcomeReported, nil
}

func (p *Pipeline) renderPath(ctx context.Context, log *slog.Logger, ev model.InboundEvent, path string) (block string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic rendering sprite", "path", path, "panic", r, "stack", string(debug.Stack()))
			block = ""
		}
	}()

	pair, ok := p.fetcher.Resolve(ctx, ev, path)
	if !ok {
		return ""
	}

	block, err := p.reporter.RenderPath(ctx, pair)
	if err != nil {
		log.Warn("skipping sprite", "path", path, "error", err)
		return ""
	}

	if p.fragments != nil {
		if err := p.fragments.WriteFragment(ev.Number, path, block); err != nil {
			log.Warn("failed to write report fragment", "path", path, "error", err)
		}
	}
	return block
}
