// Package pipeline orchestrates the two sync pipelines: fetch, transform,
// back up, and write. Each run is recorded, measured, and optionally
// published as an event.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/countrystatecity/docsync/internal/changelog"
	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/errors"
	"github.com/countrystatecity/docsync/internal/metrics"
	"github.com/countrystatecity/docsync/internal/notify"
	"github.com/countrystatecity/docsync/internal/overview"
	"github.com/countrystatecity/docsync/internal/state"
	"github.com/countrystatecity/docsync/internal/stats"
)

// Pipeline names used in records, metrics, and events.
const (
	PipelineChangelog = "changelog"
	PipelineOverview  = "overview"
)

// Outcome of a pipeline run.
type Outcome string

const (
	OutcomeUpdated      Outcome = "updated"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeNoStatistics Outcome = "no-statistics"
	OutcomeFailed       Outcome = "failed"
)

// TextFetcher fetches a remote text resource.
type TextFetcher interface {
	Text(ctx context.Context, url string) (string, error)
}

// ReleaseLister fetches the upstream release list.
type ReleaseLister interface {
	List(ctx context.Context) ([]changelog.Release, error)
}

// RunRecorder persists run history. *state.Store satisfies it.
type RunRecorder interface {
	Append(ctx context.Context, rec state.RunRecord) error
}

// Result describes one completed pipeline run.
type Result struct {
	RunID             string
	Pipeline          string
	Outcome           Outcome
	Path              string
	FieldsUpdated     int
	Releases          int
	DateAnchorMissing bool
}

// Runner wires the pipelines to their collaborators.
//
// Runs against the same Runner are serialized: the daemon and the one-shot
// commands share destination files, and concurrent writes are not otherwise
// guarded.
type Runner struct {
	cfg       *config.Config
	fetcher   TextFetcher
	lister    ReleaseLister
	store     RunRecorder
	recorder  metrics.Recorder
	publisher notify.Publisher
	now       func() time.Time

	mu sync.Mutex
}

// Option customizes a Runner.
type Option func(*Runner)

// WithStore enables run-history recording.
func WithStore(store RunRecorder) Option {
	return func(r *Runner) { r.store = store }
}

// WithRecorder enables metrics.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithPublisher enables event notification.
func WithPublisher(p notify.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithClock injects the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner. fetcher is required for the overview pipeline,
// lister for the changelog pipeline; either may be nil if only the other
// pipeline will run.
func NewRunner(cfg *config.Config, fetcher TextFetcher, lister ReleaseLister, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		fetcher:   fetcher,
		lister:    lister,
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Changelog regenerates the changelog document from the upstream releases.
func (r *Runner) Changelog(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{
		RunID:    uuid.NewString(),
		Pipeline: PipelineChangelog,
		Path:     r.cfg.Docs.ChangelogPath,
	}
	started := r.now()

	err := r.runChangelog(ctx, &res)
	r.finish(ctx, &res, started, err)
	return res, err
}

func (r *Runner) runChangelog(ctx context.Context, res *Result) error {
	if r.lister == nil {
		return errors.ConfigRequired("release lister")
	}

	fetchStart := r.now()
	releases, err := r.lister.List(ctx)
	if err != nil {
		return err
	}
	r.recorder.ObserveFetchDuration("releases", r.now().Sub(fetchStart))
	res.Releases = len(releases)
	r.recorder.SetReleasesRendered(len(releases))

	doc := changelog.Render(releases)
	changed, err := writeWithBackup(res.Path, []byte(doc), r.cfg.Docs.BackupEnabled())
	if err != nil {
		return err
	}

	if changed {
		res.Outcome = OutcomeUpdated
	} else {
		res.Outcome = OutcomeUnchanged
	}
	return nil
}

// Overview patches the overview document with fresh README statistics.
func (r *Runner) Overview(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{
		RunID:    uuid.NewString(),
		Pipeline: PipelineOverview,
		Path:     r.cfg.Docs.OverviewPath,
	}
	started := r.now()

	err := r.runOverview(ctx, &res)
	r.finish(ctx, &res, started, err)
	return res, err
}

func (r *Runner) runOverview(ctx context.Context, res *Result) error {
	if r.fetcher == nil {
		return errors.ConfigRequired("readme fetcher")
	}

	fetchStart := r.now()
	readme, err := r.fetcher.Text(ctx, r.cfg.Readme.URL)
	if err != nil {
		return err
	}
	r.recorder.ObserveFetchDuration("readme", r.now().Sub(fetchStart))

	rec := stats.Extract(readme)
	if rec.Empty() {
		// Not an error: the run ends successfully without touching files.
		slog.Info("No statistics found in README, nothing to update")
		res.Outcome = OutcomeNoStatistics
		return nil
	}
	slog.Debug("Extracted statistics", "found", rec.FoundCount())

	current, err := os.ReadFile(res.Path)
	if err != nil {
		return errors.ReadFailed(res.Path, err)
	}

	rewritten, err := overview.Rewrite(string(current), rec, r.now())
	if err != nil {
		return errors.ParseFailed("overview document", err)
	}

	res.FieldsUpdated = rewritten.FieldsUpdated()
	res.DateAnchorMissing = rewritten.DateAnchorMissing
	r.recorder.SetFieldsUpdated(res.FieldsUpdated)

	if rewritten.DateAnchorMissing {
		slog.Warn("Overview updated but no Last Updated anchor was found", "path", res.Path)
	}

	if res.FieldsUpdated == 0 || rewritten.Text == string(current) {
		res.Outcome = OutcomeUnchanged
		return nil
	}

	if _, err := writeWithBackup(res.Path, []byte(rewritten.Text), r.cfg.Docs.BackupEnabled()); err != nil {
		return err
	}
	res.Outcome = OutcomeUpdated
	return nil
}

// Sync runs both pipelines, changelog first. The first failure aborts.
func (r *Runner) Sync(ctx context.Context) ([]Result, error) {
	var results []Result

	res, err := r.Changelog(ctx)
	results = append(results, res)
	if err != nil {
		return results, err
	}

	res, err = r.Overview(ctx)
	results = append(results, res)
	return results, err
}

// finish records outcome, metrics, and notifications for a completed run.
func (r *Runner) finish(ctx context.Context, res *Result, started time.Time, runErr error) {
	duration := r.now().Sub(started)
	if runErr != nil {
		res.Outcome = OutcomeFailed
	}

	r.recorder.ObservePipelineDuration(res.Pipeline, duration)
	r.recorder.IncPipelineOutcome(res.Pipeline, metrics.Outcome(res.Outcome))

	if r.store != nil {
		rec := state.RunRecord{
			ID:            res.RunID,
			Pipeline:      res.Pipeline,
			Outcome:       string(res.Outcome),
			FieldsUpdated: res.FieldsUpdated,
			Releases:      res.Releases,
			Duration:      duration,
			StartedAt:     started,
		}
		if runErr != nil {
			rec.Error = runErr.Error()
		}
		if err := r.store.Append(ctx, rec); err != nil {
			slog.Warn("Failed to record run", "run_id", res.RunID, "error", err)
		}
	}

	if res.Outcome == OutcomeUpdated {
		event := &notify.SyncEvent{
			RunID:         res.RunID,
			Pipeline:      res.Pipeline,
			Outcome:       string(res.Outcome),
			Path:          res.Path,
			FieldsUpdated: res.FieldsUpdated,
			Releases:      res.Releases,
		}
		if err := r.publisher.PublishSync(event); err != nil {
			slog.Warn("Failed to publish sync event", "run_id", res.RunID, "error", err)
		}
	}
}
