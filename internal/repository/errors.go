// Package repository defines the in-memory stores for rooms, customers and
// bookings along with the error values they share. These sentinel values
// allow higher layers such as handlers to distinguish between different
// failure scenarios without inspecting error strings.
package repository

import "errors"

// ErrBookingConflict is returned when a proposed booking overlaps an
// existing booking for the same room and date. The ledger is left
// unchanged. Handlers should translate this into an HTTP 400 response
// carrying the error text as the message.
var ErrBookingConflict = errors.New("Room is already booked for the given time.")

// ErrUnknownOverlapRule is returned by ParseOverlapRule for names other
// than "legacy" and "strict".
var ErrUnknownOverlapRule = errors.New("unknown overlap rule")
