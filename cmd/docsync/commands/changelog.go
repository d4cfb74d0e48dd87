package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/gitops"
	"github.com/countrystatecity/docsync/internal/pipeline"
)

// ChangelogCmd implements the 'changelog' command.
type ChangelogCmd struct {
	Commit bool `help:"Commit the updated document to the containing git repository"`
}

func (c *ChangelogCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	lister, err := releaseLister(cfg)
	if err != nil {
		return err
	}

	store, publisher, err := openCollaborators(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	defer func() { _ = publisher.Close() }()

	runner := pipeline.NewRunner(cfg, nil, lister,
		pipeline.WithStore(store), pipeline.WithPublisher(publisher))

	res, err := runner.Changelog(context.Background())
	if err != nil {
		return err
	}
	reportResult(res)

	if c.Commit && res.Outcome == pipeline.OutcomeUpdated {
		return commitDocs(cfg, []string{res.Path}, "docs: update changelog")
	}
	return nil
}

// reportResult prints a one-line human summary for a finished run.
func reportResult(res pipeline.Result) {
	switch res.Outcome {
	case pipeline.OutcomeUpdated:
		fmt.Printf("%s: updated %s\n", res.Pipeline, res.Path)
	case pipeline.OutcomeUnchanged:
		fmt.Printf("%s: already up to date\n", res.Pipeline)
	case pipeline.OutcomeNoStatistics:
		fmt.Printf("%s: no statistics found upstream, nothing to update\n", res.Pipeline)
	}
}

// commitDocs commits the given document paths with the configured author.
func commitDocs(cfg *config.Config, paths []string, message string) error {
	if len(paths) == 0 {
		return nil
	}
	hash, err := gitops.CommitPaths(filepath.Dir(paths[0]), paths, gitops.Author{
		Name:  cfg.Git.AuthorName,
		Email: cfg.Git.AuthorEmail,
	}, message)
	if err != nil {
		return err
	}
	if hash == "" {
		slog.Info("Nothing to commit")
		return nil
	}
	fmt.Printf("committed %s\n", hash)
	return nil
}
