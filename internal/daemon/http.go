package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/countrystatecity/docsync/internal/state"
	"github.com/countrystatecity/docsync/internal/version"
)

type healthRun struct {
	ID        string `json:"id"`
	Pipeline  string `json:"pipeline"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
	StartedAt string `json:"started_at"`
	Duration  string `json:"duration"`
}

type healthResponse struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Runs    []healthRun `json:"runs,omitempty"`
}

// newHTTPServer builds the daemon's metrics and health server.
func newHTTPServer(listen string, registry *prom.Registry, store *state.Store) *http.Server {
	mux := http.NewServeMux()

	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Version: version.Version}

		if store != nil {
			records, err := store.Recent(r.Context(), 10)
			if err != nil {
				slog.Warn("Health endpoint could not read run history", "error", err)
			}
			for _, rec := range records {
				resp.Runs = append(resp.Runs, healthRun{
					ID:        rec.ID,
					Pipeline:  rec.Pipeline,
					Outcome:   rec.Outcome,
					Error:     rec.Error,
					StartedAt: rec.StartedAt.UTC().Format(time.RFC3339),
					Duration:  rec.Duration.String(),
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Warn("Failed to write health response", "error", err)
		}
	})

	return &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
