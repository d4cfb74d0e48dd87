// Package commands defines the docsync CLI surface.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/errors"
	"github.com/countrystatecity/docsync/internal/fetch"
	"github.com/countrystatecity/docsync/internal/notify"
	"github.com/countrystatecity/docsync/internal/state"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsync.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Changelog ChangelogCmd `cmd:"" help:"Regenerate the changelog document from upstream releases"`
	Overview  OverviewCmd  `cmd:"" help:"Update overview statistics from the upstream README"`
	Sync      SyncCmd      `cmd:"" help:"Run both pipelines: changelog first, then overview"`
	Verify    VerifyCmd    `cmd:"" help:"Check the generated documents for structural problems"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Daemon    DaemonCmd    `cmd:"" help:"Run scheduled syncs with metrics and health endpoints"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// releaseLister builds an authenticated lister, failing before any network
// call when the token is absent.
func releaseLister(cfg *config.Config) (*fetch.ReleaseLister, error) {
	token := cfg.GitHub.Token()
	if token == "" {
		return nil, errors.TokenMissing(cfg.GitHub.TokenEnv)
	}
	return fetch.NewReleaseLister(cfg.GitHub.Owner, cfg.GitHub.Repo, token), nil
}

// openCollaborators opens the run-history store and the event publisher.
func openCollaborators(cfg *config.Config) (*state.Store, notify.Publisher, error) {
	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, nil, errors.StateError("open run history", err)
	}

	publisher, err := notify.NewPublisher(cfg.Notify)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return store, publisher, nil
}
