package model

// Booking records a reservation of one room on one date for the half-open
// interval [StartTime, EndTime).
//
// Fields:
//  BookingID    – sequential identifier assigned by the ledger, starting at 1.
//  CustomerName – name the booking was made under, stored as given.
//  Date         – calendar date; only compared for equality.
//  StartTime    – start of the window in the client's time unit.
//  EndTime      – end of the window (exclusive) in the same unit.
//  RoomID       – room being booked; not checked against the registry.
type Booking struct {
    BookingID    int    `json:"bookingId"`
    CustomerName string `json:"customerName"`
    Date         string `json:"date"`
    StartTime    int    `json:"startTime"`
    EndTime      int    `json:"endTime"`
    RoomID       int    `json:"roomId"`
}
