// Package service contains the command and query façades that sit between
// the HTTP handlers and the in-memory repositories.
package service

import (
	"context"

	"github.com/iliyamo/meeting-room-booking/internal/queue"
)

// EventPublisher delivers booking events to downstream consumers.
// *queue.Publisher satisfies it. The booking request waits on the call, so
// implementations hand the event off instead of talking to the broker.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

// PublishBookingCreated implements EventPublisher.
func (NopPublisher) PublishBookingCreated(context.Context, queue.BookingCreatedEvent) error {
	return nil
}
