package events

import (
	"context"

	"go.uber.org/zap"
)

type pendingEvent struct {
	stream string
	event  Event
}

// Outbox buffers events collected while a database transaction is open and
// hands them to the publisher only after the transaction committed. Events
// from aborted transactions are discarded, so collaborators never see a
// state change that was rolled back. Delivery is at-least-once: a publish
// failure after commit is logged, never propagated back to the caller.
//
// Not safe for concurrent use; create one per operation.
type Outbox struct {
	publisher Publisher
	log       *zap.Logger
	pending   []pendingEvent
}

func NewOutbox(publisher Publisher, log *zap.Logger) *Outbox {
	return &Outbox{publisher: publisher, log: log}
}

func (o *Outbox) Add(stream string, event Event) {
	o.pending = append(o.pending, pendingEvent{stream: stream, event: event})
}

func (o *Outbox) Len() int {
	return len(o.pending)
}

// Flush publishes every buffered event and clears the buffer. Call only
// after the surrounding transaction committed.
func (o *Outbox) Flush(ctx context.Context) {
	for _, p := range o.pending {
		if err := o.publisher.Publish(ctx, p.stream, p.event); err != nil {
			o.log.Warn("failed to publish event",
				zap.String("stream", p.stream),
				zap.String("type", p.event.Type),
				zap.Error(err),
			)
		}
	}
	o.pending = nil
}

// Discard drops buffered events after a rollback.
func (o *Outbox) Discard() {
	o.pending = nil
}
