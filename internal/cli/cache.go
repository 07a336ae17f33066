package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/iconbot/internal/adapter/driven/sqlite"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the upload cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached image uploads, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openUploadDB(cmd.Context(), cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		records, err := sqliteadapter.NewUploadRepo(db).List(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HASH\tURL\tCREATED")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Hash, r.URL, r.CreatedAt.UTC().Format(time.RFC3339))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d cached uploads\n", len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
}
