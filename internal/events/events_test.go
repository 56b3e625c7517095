package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.PublishUnresolvedLink(context.Background(), &UnresolvedLinkEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishDocumentFailed(context.Background(), &DocumentFailedEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventWireFormat(t *testing.T) {
	e := UnresolvedLinkEvent{
		BatchID:    "b-1",
		SourcePath: "a.docx",
		TargetRef:  "missing.docx",
		Reason:     "unresolved internal link",
		Timestamp:  time.Unix(0, 0).UTC(),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"batch_id", "source_path", "target_ref", "reason", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, raw)
		}
	}
}

func TestNewNATSPublisherRequiresURL(t *testing.T) {
	if _, err := NewNATSPublisher("", "docnorm"); err == nil {
		t.Fatal("expected error for empty url")
	}
}
