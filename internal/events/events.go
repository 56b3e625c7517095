// Package events publishes batch diagnostics to interested consumers.
// The core receives a Publisher by injection; NoopPublisher keeps the core
// free of network I/O unless the wrapper opts in.
package events

import (
	"context"
	"time"
)

// UnresolvedLinkEvent reports an internal link whose target document was not
// part of the batch.
type UnresolvedLinkEvent struct {
	BatchID    string    `json:"batch_id"`
	SourcePath string    `json:"source_path"`
	TargetRef  string    `json:"target_ref"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// DocumentFailedEvent reports a document that failed Phase 1.
type DocumentFailedEvent struct {
	BatchID    string    `json:"batch_id"`
	SourcePath string    `json:"source_path"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits batch diagnostics events.
type Publisher interface {
	PublishUnresolvedLink(ctx context.Context, event *UnresolvedLinkEvent) error
	PublishDocumentFailed(ctx context.Context, event *DocumentFailedEvent) error
	Close() error
}

// NoopPublisher discards all events (default when eventing is not configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishUnresolvedLink(context.Context, *UnresolvedLinkEvent) error { return nil }
func (NoopPublisher) PublishDocumentFailed(context.Context, *DocumentFailedEvent) error { return nil }
func (NoopPublisher) Close() error                                                      { return nil }
