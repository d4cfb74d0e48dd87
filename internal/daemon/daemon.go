// Package daemon runs the sync pipelines on a schedule, watches the
// configuration file for changes, and serves metrics and health over HTTP.
package daemon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/pipeline"
	"github.com/countrystatecity/docsync/internal/state"
)

// syncTimeout bounds a single scheduled sync run.
const syncTimeout = 10 * time.Minute

// RunnerFactory builds a pipeline runner for the given configuration. The
// returned closer, if non-nil, releases resources the runner holds (the
// event publisher connection) and is closed when the runner is replaced.
type RunnerFactory func(cfg *config.Config) (*pipeline.Runner, io.Closer, error)

// Daemon owns the scheduler, the config watcher, and the HTTP server.
type Daemon struct {
	configPath  string
	buildRunner RunnerFactory
	store       *state.Store
	registry    *prom.Registry
	scheduler   *Scheduler

	mu           sync.RWMutex
	cfg          *config.Config
	runner       *pipeline.Runner
	runnerCloser io.Closer
}

// New creates a daemon. registry carries the pipeline metrics already
// registered by the caller; process and Go runtime collectors are added here.
func New(configPath string, cfg *config.Config, factory RunnerFactory, store *state.Store, registry *prom.Registry) (*Daemon, error) {
	runner, closer, err := factory(cfg)
	if err != nil {
		return nil, err
	}

	if registry != nil {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Daemon{
		configPath:   configPath,
		buildRunner:  factory,
		store:        store,
		registry:     registry,
		cfg:          cfg,
		runner:       runner,
		runnerCloser: closer,
	}, nil
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	interval, err := d.cfg.Daemon.IntervalDuration()
	if err != nil {
		return err
	}

	d.scheduler, err = NewScheduler()
	if err != nil {
		return err
	}
	if err := d.scheduler.ScheduleSync(interval, d.syncOnce); err != nil {
		return err
	}
	d.scheduler.Start()

	watcher, err := NewConfigWatcher(d.configPath, d.ReloadConfig)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	server := newHTTPServer(d.cfg.Daemon.Listen, d.registry, d.store)
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "listen", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	slog.Info("Daemon started", "interval", interval)

	// First sync runs immediately so a fresh deployment does not sit idle
	// until the first tick.
	go d.syncOnce()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
		slog.Error("HTTP server failed", "error", runErr)
	}

	slog.Info("Shutting down daemon")

	if err := watcher.Stop(); err != nil {
		slog.Warn("Failed to stop config watcher", "error", err)
	}
	if err := d.scheduler.Stop(); err != nil {
		slog.Warn("Failed to stop scheduler", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown incomplete", "error", err)
	}

	d.mu.Lock()
	if d.runnerCloser != nil {
		_ = d.runnerCloser.Close()
	}
	d.mu.Unlock()

	return runErr
}

// syncOnce runs both pipelines with a bounded context. Scheduled runs never
// abort the daemon; failures are logged and recorded in run history.
func (d *Daemon) syncOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	d.mu.RLock()
	runner := d.runner
	d.mu.RUnlock()

	results, err := runner.Sync(ctx)
	if err != nil {
		slog.Error("Scheduled sync failed", "error", err)
	}
	for _, res := range results {
		slog.Info("Pipeline finished",
			"run_id", res.RunID,
			"pipeline", res.Pipeline,
			"outcome", string(res.Outcome))
	}
}

// ReloadConfig applies a new configuration without restarting. The listen
// address cannot change at runtime; a changed value is logged and ignored
// until restart.
func (d *Daemon) ReloadConfig(ctx context.Context, newCfg *config.Config) error {
	interval, err := newCfg.Daemon.IntervalDuration()
	if err != nil {
		return err
	}

	runner, closer, err := d.buildRunner(newCfg)
	if err != nil {
		return err
	}

	d.mu.Lock()
	oldCloser := d.runnerCloser
	oldListen := d.cfg.Daemon.Listen
	oldInterval := d.cfg.Daemon.Interval
	d.cfg = newCfg
	d.runner = runner
	d.runnerCloser = closer
	d.mu.Unlock()

	if oldCloser != nil {
		_ = oldCloser.Close()
	}

	if newCfg.Daemon.Listen != oldListen {
		slog.Warn("Listen address change requires a restart to take effect",
			"current", oldListen, "configured", newCfg.Daemon.Listen)
	}

	if newCfg.Daemon.Interval != oldInterval && d.scheduler != nil {
		if err := d.scheduler.ScheduleSync(interval, d.syncOnce); err != nil {
			return err
		}
	}

	return nil
}
