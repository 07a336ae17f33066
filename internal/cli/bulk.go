package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	defaultBulkOwner = "tgstation"
	defaultBulkRepo  = "tgstation"
)

var bulkFile string

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Diff and comment on a list of pull requests",
	Long: `Run every pull request listed in a file through the sprite diff and post
the results. The first line may name the repository as "owner repo";
otherwise tgstation/tgstation is used. Every other non-empty line is a pull
request number. Lines starting with # are ignored.`,
	Args: cobra.NoArgs,
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)
	bulkCmd.Flags().StringVarP(&bulkFile, "file", "f", "bulk_prs.txt", "file listing pull requests")
}

// bulkList is a parsed bulk file.
type bulkList struct {
	Repo    string
	Numbers []int
}

// parseBulkList reads an optional "owner repo" header followed by one pull
// request number per line.
func parseBulkList(r io.Reader) (*bulkList, error) {
	list := &bulkList{Repo: defaultBulkOwner + "/" + defaultBulkRepo}

	scanner := bufio.NewScanner(r)
	first := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if first {
			first = false
			if fields := strings.Fields(line); len(fields) == 2 {
				list.Repo = fields[0] + "/" + fields[1]
				continue
			}
		}

		n, err := strconv.Atoi(line)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %d: invalid pull request number %q", lineNo, line)
		}
		list.Numbers = append(list.Numbers, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bulk list: %w", err)
	}
	return list, nil
}

func runBulk(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForPosting(); err != nil {
		return err
	}

	f, err := os.Open(bulkFile)
	if err != nil {
		return fmt.Errorf("opening bulk list: %w", err)
	}
	list, err := parseBulkList(f)
	_ = f.Close()
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

	pipeline, err := a.postingPipeline()
	if err != nil {
		return err
	}

	slog.Info("running bulk list", "repo", list.Repo, "pull_requests", len(list.Numbers))
	failed := 0
	for _, n := range list.Numbers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.runPullRequest(ctx, pipeline, list.Repo, n); err != nil {
			slog.Error("pull request failed", "repo", list.Repo, "pr", n, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pull requests failed", failed, len(list.Numbers))
	}
	return nil
}
