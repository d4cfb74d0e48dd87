// Package config loads and validates the docsync configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/countrystatecity/docsync/internal/errors"
)

// Config represents the application configuration
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Readme ReadmeConfig `yaml:"readme"`
	Docs   DocsConfig   `yaml:"docs"`
	Daemon DaemonConfig `yaml:"daemon"`
	Notify NotifyConfig `yaml:"notify"`
	State  StateConfig  `yaml:"state"`
	Git    GitConfig    `yaml:"git"`
}

// GitHubConfig identifies the upstream repository whose releases feed the changelog.
type GitHubConfig struct {
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	TokenEnv string `yaml:"token_env,omitempty"` // environment variable holding the API token
}

// Token reads the configured token environment variable.
func (g GitHubConfig) Token() string {
	return os.Getenv(g.TokenEnv)
}

// ReadmeConfig points at the raw README whose statistics feed the overview page.
type ReadmeConfig struct {
	URL string `yaml:"url"`
}

// DocsConfig locates the documents the pipelines maintain.
type DocsConfig struct {
	OverviewPath  string `yaml:"overview_path"`
	ChangelogPath string `yaml:"changelog_path"`
	Backup        *bool  `yaml:"backup,omitempty"` // write .backup sibling before overwrite
}

// BackupEnabled reports whether pre-write backups are on (default true).
func (d DocsConfig) BackupEnabled() bool {
	return d.Backup == nil || *d.Backup
}

// DaemonConfig controls scheduled sync mode.
type DaemonConfig struct {
	Interval string `yaml:"interval"` // Go duration string, e.g. "6h"
	Listen   string `yaml:"listen"`   // metrics/health listen address
}

// IntervalDuration parses the configured interval.
func (d DaemonConfig) IntervalDuration() (time.Duration, error) {
	return time.ParseDuration(d.Interval)
}

// NotifyConfig enables publishing sync events to NATS when URL is set.
type NotifyConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether event publishing is configured.
func (n NotifyConfig) Enabled() bool { return n.URL != "" }

// StateConfig locates the run-history database.
type StateConfig struct {
	Path string `yaml:"path"`
}

// GitConfig controls the optional --commit step.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load loads configuration from the specified file.
//
// A .env/.env.local file is loaded first (without overriding the existing
// process environment), then environment variables are expanded in the raw
// YAML before unmarshalling.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads the first .env-style file found. Missing files are fine.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", path)
				return
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.GitHub.Owner == "" {
		c.GitHub.Owner = "dr5hn"
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = "countries-states-cities-database"
	}
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = "GITHUB_TOKEN"
	}
	if c.Readme.URL == "" {
		c.Readme.URL = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/master/README.md", c.GitHub.Owner, c.GitHub.Repo)
	}
	if c.Docs.OverviewPath == "" {
		c.Docs.OverviewPath = "docs/overview.mdx"
	}
	if c.Docs.ChangelogPath == "" {
		c.Docs.ChangelogPath = "docs/changelog.mdx"
	}
	if c.Daemon.Interval == "" {
		c.Daemon.Interval = "6h"
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":9465"
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "docsync.events"
	}
	if c.State.Path == "" {
		c.State.Path = "docsync.db"
	}
	if c.Git.AuthorName == "" {
		c.Git.AuthorName = "docsync"
	}
	if c.Git.AuthorEmail == "" {
		c.Git.AuthorEmail = "docsync@countrystatecity.in"
	}
}

// Validate checks cross-field constraints that defaults cannot repair.
func (c *Config) Validate() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return errors.ConfigRequired("github.owner/github.repo")
	}
	if _, err := c.Daemon.IntervalDuration(); err != nil {
		return errors.New(errors.CategoryValidation, errors.SeverityFatal, "invalid daemon interval").
			WithContext("interval", c.Daemon.Interval)
	}
	return nil
}
