package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/iconbot/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a configuration template",
	Long: `Write a YAML configuration file listing every recognized option with its
default. Secrets are left empty; fill them in or set them through the
environment (environment variables always win).

Example:
  iconbot init-config --output config.yaml
  iconbot serve --config config.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")
		if err := writeConfigTemplate(output, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().StringP("output", "o", "config.yaml", "file to write")
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func templateConfig() config.Config {
	return config.Config{
		WebhookPort: 8080,
		Ignore:      []string{},
		DBPath:      "iconbot.db",
		ScratchDir:  "icon_dump",
		Comparer: config.ComparerConfig{
			Command: []string{},
			Timeout: time.Minute,
		},
		Workers:     4,
		QueueSize:   64,
		JobTimeout:  5 * time.Minute,
		HTTPTimeout: 30 * time.Second,
	}
}

func writeConfigTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(templateConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# iconbot configuration. Environment variables override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
