package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Subject suffixes under the configured prefix.
const (
	SubjectUnresolvedLink = "links.unresolved"
	SubjectDocumentFailed = "documents.failed"
)

// NATSPublisher publishes batch events to NATS JetStream.
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	prefix string
}

// NewNATSPublisher connects to NATS and prepares a JetStream context.
// prefix namespaces the subjects (e.g. "docnorm" -> "docnorm.links.unresolved").
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if prefix == "" {
		prefix = "docnorm"
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", url, "prefix", prefix)

	return &NATSPublisher{conn: conn, js: js, prefix: prefix}, nil
}

// PublishUnresolvedLink publishes an unresolved-link event.
func (p *NATSPublisher) PublishUnresolvedLink(ctx context.Context, event *UnresolvedLinkEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, p.prefix+"."+SubjectUnresolvedLink, event)
}

// PublishDocumentFailed publishes a document-failed event.
func (p *NATSPublisher) PublishDocumentFailed(ctx context.Context, event *DocumentFailedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, p.prefix+"."+SubjectDocumentFailed, event)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, event any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	slog.Debug("Published batch event", "subject", subject)
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
