package commands

import (
	"context"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/daemon"
	"github.com/countrystatecity/docsync/internal/errors"
	"github.com/countrystatecity/docsync/internal/fetch"
	"github.com/countrystatecity/docsync/internal/metrics"
	"github.com/countrystatecity/docsync/internal/notify"
	"github.com/countrystatecity/docsync/internal/pipeline"
	"github.com/countrystatecity/docsync/internal/state"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	// The scheduled sync always runs the changelog pipeline, so a missing
	// token is a startup error rather than a failure on every tick.
	if _, err := releaseLister(cfg); err != nil {
		return err
	}

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return errors.StateError("open run history", err)
	}
	defer func() { _ = store.Close() }()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	// The factory is re-invoked on config reload; the recorder stays
	// registered once, everything else is rebuilt from the new config.
	factory := func(cfg *config.Config) (*pipeline.Runner, io.Closer, error) {
		lister, err := releaseLister(cfg)
		if err != nil {
			return nil, nil, err
		}
		publisher, err := notify.NewPublisher(cfg.Notify)
		if err != nil {
			return nil, nil, err
		}
		runner := pipeline.NewRunner(cfg, fetch.NewClient(), lister,
			pipeline.WithStore(store),
			pipeline.WithRecorder(recorder),
			pipeline.WithPublisher(publisher))
		return runner, closerFor(publisher), nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dm, err := daemon.New(root.Config, cfg, factory, store, registry)
	if err != nil {
		return err
	}

	slog.Info("Daemon starting", "config", root.Config)
	return dm.Run(ctx)
}

// closerFor hides the noop publisher from the daemon's resource tracking.
func closerFor(p notify.Publisher) io.Closer {
	if _, ok := p.(notify.NoopPublisher); ok {
		return nil
	}
	return p
}
