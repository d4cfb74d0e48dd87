package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/countrystatecity/docsync/internal/changelog"
	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/notify"
	"github.com/countrystatecity/docsync/internal/state"
)

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Text(ctx context.Context, url string) (string, error) {
	return f.text, f.err
}

type fakeLister struct {
	releases []changelog.Release
	err      error
}

func (f *fakeLister) List(ctx context.Context) ([]changelog.Release, error) {
	return f.releases, f.err
}

type capturingPublisher struct {
	events []*notify.SyncEvent
}

func (c *capturingPublisher) PublishSync(e *notify.SyncEvent) error {
	c.events = append(c.events, e)
	return nil
}
func (c *capturingPublisher) Close() error { return nil }

const overviewDoc = `---
title: Overview
description: World database with 250+ countries, 5,000+ states, and 151,000+ cities.
---

<div className="text-3xl font-bold text-blue-600">250</div>
<div className="text-3xl font-bold text-green-600">5,038</div>
<div className="text-3xl font-bold text-orange-600">151,024</div>

**Last Updated:** 14th March 2025
`

const readmeWithStats = "Total Countries : 251\nTotal States : 5,100\nTotal Cities : 152,040\n"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Docs.ChangelogPath = filepath.Join(dir, "changelog.mdx")
	cfg.Docs.OverviewPath = filepath.Join(dir, "overview.mdx")
	cfg.Readme.URL = "https://example.invalid/readme"
	return cfg
}

func fixedClock() func() time.Time {
	now := time.Date(2025, time.September, 21, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestChangelog_WritesDocumentAndBackup(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.ChangelogPath, []byte("old content\n"), 0o644))

	lister := &fakeLister{releases: []changelog.Release{
		{TagName: "v2.0.0", PublishedAt: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Body: "* Added cities\n"},
	}}
	runner := NewRunner(cfg, nil, lister, WithClock(fixedClock()))

	res, err := runner.Changelog(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, res.Outcome)
	require.Equal(t, 1, res.Releases)

	written, err := os.ReadFile(cfg.Docs.ChangelogPath)
	require.NoError(t, err)
	require.Contains(t, string(written), `label="v2.0.0"`)

	backup, err := os.ReadFile(cfg.Docs.ChangelogPath + ".backup")
	require.NoError(t, err)
	require.Equal(t, "old content\n", string(backup))
}

func TestChangelog_UnchangedContent_SkipsWriteAndBackup(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{releases: []changelog.Release{
		{TagName: "v1.0.0", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Body: ""},
	}}
	require.NoError(t, os.WriteFile(cfg.Docs.ChangelogPath, []byte(changelog.Render(lister.releases)), 0o644))

	runner := NewRunner(cfg, nil, lister, WithClock(fixedClock()))
	res, err := runner.Changelog(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, res.Outcome)

	_, err = os.Stat(cfg.Docs.ChangelogPath + ".backup")
	require.True(t, os.IsNotExist(err))
}

func TestChangelog_FetchError_RecordsFailedRun(t *testing.T) {
	cfg := testConfig(t)
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	lister := &fakeLister{err: errors.New("boom")}
	runner := NewRunner(cfg, nil, lister, WithStore(store), WithClock(fixedClock()))

	res, err := runner.Changelog(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, res.Outcome)

	last, err := store.LastByPipeline(context.Background(), PipelineChangelog)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, "failed", last.Outcome)
	require.Contains(t, last.Error, "boom")
}

func TestOverview_UpdatesAnchorsAndWritesBackup(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.OverviewPath, []byte(overviewDoc), 0o644))

	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, nil, WithClock(fixedClock()))
	res, err := runner.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, res.Outcome)
	require.Equal(t, 3, res.FieldsUpdated)
	require.False(t, res.DateAnchorMissing)

	written, err := os.ReadFile(cfg.Docs.OverviewPath)
	require.NoError(t, err)
	require.Contains(t, string(written), `text-blue-600">251<`)
	require.Contains(t, string(written), `text-green-600">5,100<`)
	require.Contains(t, string(written), `text-orange-600">152,040<`)
	require.Contains(t, string(written), "**Last Updated:** 21st September 2025")
	require.Contains(t, string(written), "with 250+ countries, 5,000+ states, and 152,000+ cities")

	backup, err := os.ReadFile(cfg.Docs.OverviewPath + ".backup")
	require.NoError(t, err)
	require.Equal(t, overviewDoc, string(backup))
}

func TestOverview_NoStatistics_LeavesFileUntouched(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.OverviewPath, []byte(overviewDoc), 0o644))

	runner := NewRunner(cfg, &fakeFetcher{text: "just a readme"}, nil, WithClock(fixedClock()))
	res, err := runner.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeNoStatistics, res.Outcome)

	current, err := os.ReadFile(cfg.Docs.OverviewPath)
	require.NoError(t, err)
	require.Equal(t, overviewDoc, string(current))
}

func TestOverview_AnchorsAbsent_Unchanged(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.OverviewPath, []byte("# no anchors here\n"), 0o644))

	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, nil, WithClock(fixedClock()))
	res, err := runner.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, res.Outcome)
	require.Zero(t, res.FieldsUpdated)
}

func TestOverview_MissingDocument_Fails(t *testing.T) {
	cfg := testConfig(t)

	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, nil, WithClock(fixedClock()))
	res, err := runner.Overview(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, res.Outcome)
}

func TestOverview_BackupDisabled_WritesNoBackup(t *testing.T) {
	cfg := testConfig(t)
	off := false
	cfg.Docs.Backup = &off
	require.NoError(t, os.WriteFile(cfg.Docs.OverviewPath, []byte(overviewDoc), 0o644))

	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, nil, WithClock(fixedClock()))
	_, err := runner.Overview(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(cfg.Docs.OverviewPath + ".backup")
	require.True(t, os.IsNotExist(err))
}

func TestRunner_PublishesEventOnlyWhenUpdated(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.OverviewPath, []byte(overviewDoc), 0o644))
	pub := &capturingPublisher{}

	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, nil,
		WithPublisher(pub), WithClock(fixedClock()))

	_, err := runner.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	require.Equal(t, PipelineOverview, pub.events[0].Pipeline)

	// second run is idempotent: no change, no event
	_, err = runner.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
}

func TestSync_RunsChangelogThenOverview(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.OverviewPath, []byte(overviewDoc), 0o644))

	lister := &fakeLister{releases: []changelog.Release{
		{TagName: "v1.0.0", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Body: "* Added data\n"},
	}}
	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, lister, WithClock(fixedClock()))

	results, err := runner.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, PipelineChangelog, results[0].Pipeline)
	require.Equal(t, PipelineOverview, results[1].Pipeline)
	require.Equal(t, OutcomeUpdated, results[0].Outcome)
	require.Equal(t, OutcomeUpdated, results[1].Outcome)
}

func TestSync_ChangelogFailureAbortsOverview(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{err: errors.New("rate limited")}

	runner := NewRunner(cfg, &fakeFetcher{text: readmeWithStats}, lister, WithClock(fixedClock()))
	results, err := runner.Sync(context.Background())
	require.Error(t, err)
	require.Len(t, results, 1)
	require.Equal(t, OutcomeFailed, results[0].Outcome)
}
