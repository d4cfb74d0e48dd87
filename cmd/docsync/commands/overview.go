package commands

import (
	"context"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/fetch"
	"github.com/countrystatecity/docsync/internal/pipeline"
)

// OverviewCmd implements the 'overview' command.
type OverviewCmd struct {
	Commit bool `help:"Commit the updated document to the containing git repository"`
}

func (o *OverviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	store, publisher, err := openCollaborators(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	defer func() { _ = publisher.Close() }()

	runner := pipeline.NewRunner(cfg, fetch.NewClient(), nil,
		pipeline.WithStore(store), pipeline.WithPublisher(publisher))

	res, err := runner.Overview(context.Background())
	if err != nil {
		return err
	}
	reportResult(res)

	if o.Commit && res.Outcome == pipeline.OutcomeUpdated {
		return commitDocs(cfg, []string{res.Path}, "docs: update overview statistics")
	}
	return nil
}
