package model

// Customer is a person that has made at least one booking.  The name is
// the identity key and is compared case-sensitively.
type Customer struct {
    Name string `json:"name"`
}

// CustomerWithBookings is a customer joined with the bookings made under
// exactly the same name.
type CustomerWithBookings struct {
    Name     string    `json:"name"`
    Bookings []Booking `json:"bookings"`
}
