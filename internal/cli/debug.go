package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// debugTarget is the pull request a debug run works on.
type debugTarget struct {
	Owner  string
	Repo   string
	Number int
	Send   bool
}

var debugFlags debugTarget

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Diff a single pull request interactively",
	Long: `Run the sprite diff for one pull request. Without --number the owner,
repository, pull request number and whether to post are asked for.

Unless posting is requested nothing is uploaded or commented: images and the
report (markdown plus an HTML preview) are written to the scratch directory.`,
	Args: cobra.NoArgs,
	RunE: runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().StringVar(&debugFlags.Owner, "owner", defaultBulkOwner, "repository owner")
	debugCmd.Flags().StringVar(&debugFlags.Repo, "repo", defaultBulkRepo, "repository name")
	debugCmd.Flags().IntVar(&debugFlags.Number, "number", 0, "pull request number (prompts when unset)")
	debugCmd.Flags().BoolVar(&debugFlags.Send, "send", false, "upload images and post the comment")
}

func promptDebugTarget(t debugTarget) (debugTarget, error) {
	number := ""
	if t.Number > 0 {
		number = strconv.Itoa(t.Number)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Owner").
				Value(&t.Owner).
				Validate(required("owner")),

			huh.NewInput().
				Title("Repo").
				Value(&t.Repo).
				Validate(required("repo")),

			huh.NewInput().
				Title("PR number").
				Value(&number).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n <= 0 {
						return fmt.Errorf("enter a pull request number")
					}
					return nil
				}),

			huh.NewConfirm().
				Title("Send message?").
				Value(&t.Send),
		),
	)

	if err := form.Run(); err != nil {
		return t, fmt.Errorf("prompt cancelled: %w", err)
	}

	t.Number, _ = strconv.Atoi(strings.TrimSpace(number))
	return t, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func runDebug(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target := debugFlags
	if target.Number <= 0 {
		if target, err = promptDebugTarget(target); err != nil {
			return err
		}
	}

	if target.Send {
		err = cfg.ValidateForPosting()
	} else {
		err = cfg.ValidateForRun()
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, debugMode)
	if err != nil {
		return err
	}
	defer a.Close()

	repo := strings.TrimSpace(target.Owner) + "/" + strings.TrimSpace(target.Repo)

	if target.Send {
		pipeline, err := a.postingPipeline()
		if err != nil {
			return err
		}
		return a.runPullRequest(ctx, pipeline, repo, target.Number)
	}

	pipeline, w, err := a.localPipeline()
	if err != nil {
		return err
	}
	if err := a.runPullRequest(ctx, pipeline, repo, target.Number); err != nil {
		return err
	}
	slog.Info("report written locally", "dir", w.Dir())
	return nil
}
