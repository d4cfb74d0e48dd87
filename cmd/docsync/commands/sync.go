package commands

import (
	"context"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/fetch"
	"github.com/countrystatecity/docsync/internal/pipeline"
)

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	Commit bool `help:"Commit updated documents to the containing git repository"`
}

func (s *SyncCmd) Run(_ *Global, root *CLI) error {
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

	runner := pipeline.NewRunner(cfg, fetch.NewClient(), lister,
		pipeline.WithStore(store), pipeline.WithPublisher(publisher))

	results, err := runner.Sync(context.Background())
	for _, res := range results {
		reportResult(res)
	}
	if err != nil {
		return err
	}

	if s.Commit {
		var changed []string
		for _, res := range results {
			if res.Outcome == pipeline.OutcomeUpdated {
				changed = append(changed, res.Path)
			}
		}
		return commitDocs(cfg, changed, "docs: sync changelog and overview")
	}
	return nil
}
