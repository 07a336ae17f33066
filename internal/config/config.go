// Package config resolves the bot's configuration from a config file and the
// environment, once, at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "config.json"

// Config holds the resolved configuration. It is never mutated after Load.
type Config struct {
	WebhookPort int             `mapstructure:"webhook_port" yaml:"webhook_port"`
	GitHub      GitHubConfig    `mapstructure:"github" yaml:"github"`
	UploadAPI   UploadAPIConfig `mapstructure:"upload_api" yaml:"upload_api"`
	// Ignore holds lowercase logins whose pull requests are skipped.
	Ignore      []string       `mapstructure:"-" yaml:"ignore"`
	DBPath      string         `mapstructure:"db_path" yaml:"db_path"`
	ScratchDir  string         `mapstructure:"scratch_dir" yaml:"scratch_dir"`
	Comparer    ComparerConfig `mapstructure:"comparer" yaml:"comparer"`
	Workers     int            `mapstructure:"workers" yaml:"workers"`
	QueueSize   int            `mapstructure:"queue_size" yaml:"queue_size"`
	JobTimeout  time.Duration  `mapstructure:"job_timeout" yaml:"job_timeout"`
	HTTPTimeout time.Duration  `mapstructure:"http_timeout" yaml:"http_timeout"`
}

// GitHubConfig holds the webhook secret and the identity the bot comments as.
type GitHubConfig struct {
	Secret string `mapstructure:"secret" yaml:"secret"`
	User   string `mapstructure:"user" yaml:"user"`
	Auth   string `mapstructure:"auth" yaml:"auth"`
}

// UploadAPIConfig points at the image hosting API.
type UploadAPIConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	Key string `mapstructure:"key" yaml:"key"`
}

// ComparerConfig describes the external sprite comparer command.
type ComparerConfig struct {
	Command []string      `mapstructure:"-" yaml:"command"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// envBindings maps config keys to environment variables. When several
// variables are listed the first one that is set wins.
var envBindings = map[string][]string{
	"webhook_port":     {"ICONBOT_WEBHOOK_PORT"},
	"github.secret":    {"ICONBOT_GITHUB_SECRET", "GITHUB_SECRET"},
	"github.user":      {"ICONBOT_GITHUB_USER", "GITHUB_USER"},
	"github.auth":      {"ICONBOT_GITHUB_AUTH", "GITHUB_AUTH"},
	"upload_api.url":   {"UPLOADAPI_URL"},
	"upload_api.key":   {"UPLOADAPI_KEY"},
	"ignore":           {"ICONBOT_IGNORELIST"},
	"db_path":          {"ICONBOT_DB_PATH"},
	"scratch_dir":      {"ICONBOT_SCRATCH_DIR"},
	"comparer.command": {"ICONBOT_COMPARER_COMMAND"},
	"comparer.timeout": {"ICONBOT_COMPARER_TIMEOUT"},
	"workers":          {"ICONBOT_WORKERS"},
	"queue_size":       {"ICONBOT_QUEUE_SIZE"},
	"job_timeout":      {"ICONBOT_JOB_TIMEOUT"},
	"http_timeout":     {"ICONBOT_HTTP_TIMEOUT"},
}

// EnvVars returns every environment variable Load reads.
func EnvVars() []string {
	var out []string
	for _, names := range envBindings {
		out = append(out, names...)
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webhook_port", 8080)
	v.SetDefault("ignore", []string{})
	v.SetDefault("db_path", "iconbot.db")
	v.SetDefault("scratch_dir", "icon_dump")
	v.SetDefault("comparer.timeout", time.Minute)
	v.SetDefault("workers", 4)
	v.SetDefault("queue_size", 64)
	v.SetDefault("job_timeout", 5*time.Minute)
	v.SetDefault("http_timeout", 30*time.Second)
}

// Load reads the config file at path, then applies environment overrides.
// A missing file is not an error; the defaults and environment are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
			slog.Warn("config file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Ignore = lowerAll(stringList(v.Get("ignore"), splitComma))
	cfg.Comparer.Command = stringList(v.Get("comparer.command"), strings.Fields)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringList accepts either a list value from the config file or a single
// string from the environment, which split breaks into items.
func stringList(raw any, split func(string) []string) []string {
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		return split(val)
	default:
		return cast.ToStringSlice(val)
	}
}

func splitComma(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks the settings every mode depends on.
func (c *Config) Validate() error {
	if c.WebhookPort < 1 || c.WebhookPort > 65535 {
		return fmt.Errorf("invalid webhook_port %d: must be between 1 and 65535", c.WebhookPort)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers %d: must be at least 1", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("invalid queue_size %d: must be at least 1", c.QueueSize)
	}
	for name, d := range map[string]time.Duration{
		"job_timeout":      c.JobTimeout,
		"http_timeout":     c.HTTPTimeout,
		"comparer.timeout": c.Comparer.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid %s %s: must be positive", name, d)
		}
	}
	return nil
}

// ValidateForRun checks what any sprite diff run needs.
func (c *Config) ValidateForRun() error {
	if len(c.Comparer.Command) == 0 {
		return fmt.Errorf("comparer.command is required (set ICONBOT_COMPARER_COMMAND)")
	}
	return nil
}

// ValidateForPosting checks what a run that comments on GitHub needs.
func (c *Config) ValidateForPosting() error {
	if err := c.ValidateForRun(); err != nil {
		return err
	}
	if c.GitHub.User == "" {
		return fmt.Errorf("github.user is required")
	}
	if c.GitHub.Auth == "" {
		return fmt.Errorf("github.auth is required")
	}
	if c.UploadAPI.URL == "" {
		return fmt.Errorf("upload_api.url is required")
	}
	if c.UploadAPI.Key == "" {
		return fmt.Errorf("upload_api.key is required")
	}
	return nil
}

// ValidateForServer checks what the webhook server needs.
func (c *Config) ValidateForServer() error {
	if c.GitHub.Secret == "" {
		return fmt.Errorf("github.secret is required to verify webhooks")
	}
	return c.ValidateForPosting()
}
