// Package cli implements the iconbot command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/iconbot/internal/config"
)

var (
	cfgFile   string
	debugMode bool
	logFile   string

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "iconbot",
	Short: "Posts visual diffs of changed sprite files on GitHub pull requests",
	Long: `iconbot watches pull requests for changed .dmi sprite files, renders a
per-state visual diff, and keeps a single up-to-date comment on the pull request.

It runs as a webhook server, over a list of pull requests (bulk), or
interactively against a single pull request (debug).

Example:
  iconbot serve --config config.json
  iconbot bulk --file bulk_prs.txt
  iconbot debug --debug`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		closer, err := setupLogging(os.Stderr, logFile, debugMode)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "debug logging; keep scratch files and write per-file report fragments")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append logs to this file (e.g. events.log)")
}

// setupLogging installs the default slog logger writing to console and,
// optionally, appending to path. The returned closer is nil without a file.
func setupLogging(console io.Writer, path string, debug bool) (io.Closer, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	out := console
	var closer io.Closer
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = io.MultiWriter(console, f)
		closer = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closer, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	slog.Debug("config loaded",
		"webhook_port", cfg.WebhookPort,
		"github_user", cfg.GitHub.User,
		"db_path", cfg.DBPath,
		"scratch_dir", cfg.ScratchDir,
		"workers", cfg.Workers,
		"ignored", len(cfg.Ignore),
	)
	return cfg, nil
}
