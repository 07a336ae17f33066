package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/iconbot/internal/adapter/driven/artifact"
	"github.com/ericfisherdev/iconbot/internal/adapter/driven/comparer"
	githubadapter "github.com/ericfisherdev/iconbot/internal/adapter/driven/github"
	"github.com/ericfisherdev/iconbot/internal/adapter/driven/imagehost"
	"github.com/ericfisherdev/iconbot/internal/adapter/driven/scratch"
	sqliteadapter "github.com/ericfisherdev/iconbot/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/iconbot/internal/application"
	"github.com/ericfisherdev/iconbot/internal/config"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// app holds the adapters shared by every mode.
type app struct {
	cfg      *config.Config
	ghClient *githubadapter.Client
	db       *sqliteadapter.DB
	area     *scratch.Area
	comparer *comparer.Exec
	keep     bool
}

// newApp wires the adapters from cfg. With keep set, scratch files are
// retained and per-file report fragments are written.
func newApp(ctx context.Context, cfg *config.Config, keep bool) (*app, error) {
	db, err := openUploadDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	area, err := scratch.NewArea(cfg.ScratchDir, keep)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cmp, err := comparer.NewExec(cfg.Comparer.Command, cfg.Comparer.Timeout, area)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		ghClient: githubadapter.NewClient(cfg.GitHub.Auth, cfg.HTTPTimeout),
		db:       db,
		area:     area,
		comparer: cmp,
		keep:     keep,
	}, nil
}

func openUploadDB(ctx context.Context, path string) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Debug("upload cache opened", "path", path)
	return db, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// postingPipeline uploads images and comments on the pull request.
func (a *app) postingPipeline() (*application.Pipeline, error) {
	host := imagehost.NewClient(a.cfg.UploadAPI.URL, a.cfg.UploadAPI.Key, a.cfg.HTTPTimeout)
	publisher := application.NewUploadPublisher(sqliteadapter.NewUploadRepo(a.db), host)
	reporter := application.NewDiffReporter(a.comparer, publisher)
	comments := application.NewCommentService(a.ghClient, a.cfg.GitHub.User)

	return a.withFragments(application.NewPipeline(a.ghClient, reporter, comments, a.cfg.Workers))
}

// localPipeline writes images and the report under the scratch directory
// instead of publishing anything.
func (a *app) localPipeline() (*application.Pipeline, *artifact.Writer, error) {
	w, err := artifact.NewWriter(a.cfg.ScratchDir)
	if err != nil {
		return nil, nil, err
	}
	reporter := application.NewDiffReporter(a.comparer, w)

	p, err := a.withFragments(application.NewPipeline(a.ghClient, reporter, w, a.cfg.Workers))
	return p, w, err
}

func (a *app) withFragments(p *application.Pipeline) (*application.Pipeline, error) {
	if !a.keep {
		return p, nil
	}
	w, err := artifact.NewWriter(a.cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	return p.WithFragments(w), nil
}

// runPullRequest looks up one pull request and runs it through p.
func (a *app) runPullRequest(ctx context.Context, p *application.Pipeline, repoFullName string, number int) error {
	log := slog.With("repo", repoFullName, "pr", number)
	log.Info("testing pull request")

	ctx, cancel := context.WithTimeout(ctx, a.cfg.JobTimeout)
	defer cancel()

	ev, err := a.ghClient.FetchPullRequest(ctx, repoFullName, number)
	if errors.Is(err, driven.ErrNotFound) {
		log.Warn("pull request does not exist")
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up %s#%d: %w", repoFullName, number, err)
	}

	outcome, err := p.Run(ctx, *ev)
	if err != nil {
		return fmt.Errorf("%s#%d: %w", repoFullName, number, err)
	}
	log.Info("pull request processed", "outcome", string(outcome))
	return nil
}
