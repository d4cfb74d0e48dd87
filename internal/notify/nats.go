// Package notify publishes sync events to NATS when a subject is configured.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/countrystatecity/docsync/internal/config"
)

// SyncEvent is published after a pipeline run changes a document.
type SyncEvent struct {
	RunID         string    `json:"run_id"`
	Pipeline      string    `json:"pipeline"`
	Outcome       string    `json:"outcome"`
	Path          string    `json:"path"`
	FieldsUpdated int       `json:"fields_updated,omitempty"`
	Releases      int       `json:"releases,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher sends SyncEvents to a NATS subject.
type Publisher interface {
	PublishSync(event *SyncEvent) error
	Close() error
}

// NoopPublisher is used when notification is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSync(*SyncEvent) error { return nil }
func (NoopPublisher) Close() error                 { return nil }

// NATSPublisher publishes events over a core NATS connection.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS per cfg, or returns a NoopPublisher when
// notification is disabled.
func NewPublisher(cfg config.NotifyConfig) (Publisher, error) {
	if !cfg.Enabled() {
		return NoopPublisher{}, nil
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject)
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishSync publishes one sync event.
func (p *NATSPublisher) PublishSync(event *SyncEvent) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published sync event", "pipeline", event.Pipeline, "outcome", event.Outcome)
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		return p.conn.Drain()
	}
	return nil
}
