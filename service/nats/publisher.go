package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nic0-dev/solping/service/metrics"
)

// Publisher defines the interface for publishing ping events to NATS.
type Publisher interface {
	// PublishPing publishes a single ping event to the subject "pings.{program_id}".
	PublishPing(ctx context.Context, event *PingEvent) error

	// Close closes the connection to NATS.
	Close() error
}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// CorePublisher publishes ping events with core NATS. Events are
// fire-and-forget notifications; nothing is stored server side.
type CorePublisher struct {
	nc      conn
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPublisher connects to NATS and returns a publisher.
// If metrics is nil, no metrics will be recorded.
func NewPublisher(natsURL string, m *metrics.Metrics, logger *slog.Logger) (*CorePublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("solping-publisher"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(1*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", natsURL)

	return newPublisher(nc, m, logger), nil
}

func newPublisher(nc conn, m *metrics.Metrics, logger *slog.Logger) *CorePublisher {
	return &CorePublisher{
		nc:      nc,
		logger:  logger,
		metrics: m,
	}
}

// PublishPing publishes a single ping event and waits for the server to
// acknowledge the flush, so the event is not lost when the process exits.
func (p *CorePublisher) PublishPing(ctx context.Context, event *PingEvent) error {
	subject := event.Subject()

	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ping event: %w", err)
	}

	err = p.nc.Publish(subject, data)
	if err == nil {
		err = p.nc.FlushWithContext(ctx)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordNATSPublish(subject, status)
	}
	if err != nil {
		return fmt.Errorf("failed to publish ping event: %w", err)
	}

	p.logger.DebugContext(ctx, "published ping event",
		"subject", subject,
		"signature", event.Signature,
	)

	return nil
}

// Close closes the connection to NATS.
func (p *CorePublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
		p.logger.Info("NATS publisher closed")
	}
	return nil
}
