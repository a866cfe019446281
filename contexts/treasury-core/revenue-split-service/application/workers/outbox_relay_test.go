package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"splitvault/contexts/treasury-core/revenue-split-service/adapters/memory"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

type capturingPublisher struct {
	published []ports.EventEnvelope
	topics    []string
	failAfter int
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failAfter >= 0 && len(p.published) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	p.topics = append(p.topics, topic)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, eventIDs ...string) {
	t.Helper()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	for i, eventID := range eventIDs {
		err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:       eventID,
			EventType:     "treasury.payment_released",
			OccurredAt:    base.Add(time.Duration(i) * time.Second),
			SourceService: "revenue-split-service",
			SchemaVersion: 1,
			PartitionKey:  "alice",
		})
		if err != nil {
			t.Fatalf("seed outbox failed: %v", err)
		}
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2")
	publisher := &capturingPublisher{failAfter: -1}

	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	if publisher.published[0].EventID != "evt-1" {
		t.Fatalf("expected oldest-first publishing, got %s", publisher.published[0].EventID)
	}
	if publisher.topics[0] != "treasury.notifications" {
		t.Fatalf("expected default topic, got %s", publisher.topics[0])
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(pending))
	}

	// A second cycle over the drained outbox publishes nothing.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected no new publishes, got %d", len(publisher.published))
	}
}

func TestOutboxRelayKeepsRowPendingOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2")
	publisher := &capturingPublisher{failAfter: 1}

	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
		Topic:     "treasury.notifications",
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected relay error on publish failure")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("expected evt-2 still pending, got %+v", pending)
	}

	// Recovery drains the remainder without re-sending evt-1.
	publisher.failAfter = -1
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("recovery run failed: %v", err)
	}
	if len(publisher.published) != 2 || publisher.published[1].EventID != "evt-2" {
		t.Fatalf("expected evt-2 published on recovery, got %+v", publisher.published)
	}
}
