package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type capturePublisher struct {
	published []Event
	streams   []string
	err       error
}

func (c *capturePublisher) Publish(_ context.Context, stream string, event Event) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, event)
	c.streams = append(c.streams, stream)
	return nil
}

func TestOutboxFlushPublishesInOrder(t *testing.T) {
	pub := &capturePublisher{}
	ob := NewOutbox(pub, zap.NewNop())

	ob.Add(StreamOrders, Event{Type: EventOrderStatusChanged, Payload: map[string]any{"seq": 1}})
	ob.Add(StreamSettlements, Event{Type: EventOrderSettled, Payload: map[string]any{"seq": 2}})

	if len(pub.published) != 0 {
		t.Fatalf("events published before Flush: %d", len(pub.published))
	}

	ob.Flush(context.Background())

	if len(pub.published) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.published))
	}
	if pub.streams[0] != StreamOrders || pub.streams[1] != StreamSettlements {
		t.Errorf("streams out of order: %v", pub.streams)
	}
	if pub.published[0].Type != EventOrderStatusChanged {
		t.Errorf("first event type = %q", pub.published[0].Type)
	}
	if ob.Len() != 0 {
		t.Errorf("outbox not cleared after Flush, len = %d", ob.Len())
	}
}

func TestOutboxDiscardDropsEvents(t *testing.T) {
	pub := &capturePublisher{}
	ob := NewOutbox(pub, zap.NewNop())

	ob.Add(StreamOrders, Event{Type: EventOrderStatusChanged})
	ob.Discard()
	ob.Flush(context.Background())

	if len(pub.published) != 0 {
		t.Errorf("discarded events were published: %d", len(pub.published))
	}
}

func TestOutboxFlushSwallowsPublishErrors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	ob := NewOutbox(pub, zap.NewNop())

	ob.Add(StreamOrders, Event{Type: EventOrderStatusChanged})
	ob.Flush(context.Background()) // must not panic or propagate

	if ob.Len() != 0 {
		t.Errorf("outbox kept events after failed flush, len = %d", ob.Len())
	}
}
