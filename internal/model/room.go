package model

// Room represents a bookable meeting room.  Rooms are registered once and
// never change afterwards, so callers may hold copies freely.
//
// Fields:
//  RoomID        – sequential identifier assigned by the registry, starting at 1.
//  NumberOfSeats – seating capacity as supplied by the caller (not validated).
//  Amenities     – free-form amenity labels, e.g. "projector".
//  PricePerHour  – hourly price as supplied by the caller (not validated).
type Room struct {
    RoomID        int      `json:"roomId"`
    NumberOfSeats int      `json:"numberOfSeats"`
    Amenities     []string `json:"amenities"`
    PricePerHour  float64  `json:"pricePerHour"`
}

// Clone returns a copy of the room that shares no memory with r.
func (r Room) Clone() Room {
    out := r
    out.Amenities = make([]string, len(r.Amenities))
    copy(out.Amenities, r.Amenities)
    return out
}

// RoomWithBookings is a room joined with every booking made against it.
// The room fields are inlined so the JSON shape matches a plain room plus
// a "bookings" array.
type RoomWithBookings struct {
    Room
    Bookings []Booking `json:"bookings"`
}
