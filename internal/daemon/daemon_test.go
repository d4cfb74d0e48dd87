package daemon

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/state"
)

func TestHealthEndpoint_ReportsRecentRuns(t *testing.T) {
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Append(context.Background(), state.RunRecord{
		ID:        "run-1",
		Pipeline:  "overview",
		Outcome:   "updated",
		Duration:  42 * time.Millisecond,
		StartedAt: time.Date(2025, 9, 21, 10, 0, 0, 0, time.UTC),
	}))

	server := newHTTPServer(":0", prom.NewRegistry(), store)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Runs, 1)
	require.Equal(t, "run-1", resp.Runs[0].ID)
	require.Equal(t, "updated", resp.Runs[0].Outcome)
}

func TestHealthEndpoint_NoStore_StillOK(t *testing.T) {
	server := newHTTPServer(":0", nil, nil)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Empty(t, resp.Runs)
}

func TestMetricsEndpoint_ServesRegistry(t *testing.T) {
	registry := prom.NewRegistry()
	counter := prom.NewCounter(prom.CounterOpts{Name: "docsync_test_total"})
	registry.MustRegister(counter)
	counter.Inc()

	server := newHTTPServer(":0", registry, nil)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "docsync_test_total 1")
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "docsync.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("daemon:\n  interval: 6h\n"), 0o644))

	reloaded := make(chan *config.Config, 1)
	watcher, err := NewConfigWatcher(configPath, func(ctx context.Context, cfg *config.Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	require.NoError(t, err)
	watcher.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(configPath, []byte("daemon:\n  interval: 12h\n"), 0o644))

	select {
	case cfg := <-reloaded:
		require.Equal(t, "12h", cfg.Daemon.Interval)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload was not triggered")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "docsync.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("daemon:\n  interval: 6h\n"), 0o644))

	reloaded := make(chan struct{}, 1)
	watcher, err := NewConfigWatcher(configPath, func(ctx context.Context, cfg *config.Config) error {
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)
	watcher.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("reload triggered for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
