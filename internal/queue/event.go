// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer for them.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// BookingCreatedQueue is the default durable queue booking events go to.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published when a booking has been committed to the
// ledger.  It carries the full booking so downstream consumers can log,
// notify, or trigger analytics without calling back into the service.
type BookingCreatedEvent struct {
    EventID      string `json:"event_id"`
    BookingID    int    `json:"booking_id"`
    CustomerName string `json:"customer_name"`
    RoomID       int    `json:"room_id"`
    Date         string `json:"date"`
    StartTime    int    `json:"start_time"`
    EndTime      int    `json:"end_time"`
    CreatedAt    string `json:"created_at"`
}

// NewBookingCreatedEvent builds the event for b with a fresh event id.
func NewBookingCreatedEvent(b model.Booking, now time.Time) BookingCreatedEvent {
    return BookingCreatedEvent{
        EventID:      uuid.NewString(),
        BookingID:    b.BookingID,
        CustomerName: b.CustomerName,
        RoomID:       b.RoomID,
        Date:         b.Date,
        StartTime:    b.StartTime,
        EndTime:      b.EndTime,
        CreatedAt:    now.UTC().Format(time.RFC3339),
    }
}
