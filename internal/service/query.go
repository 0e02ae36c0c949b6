package service

import (
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// QueryService answers the read-only joins over rooms, customers and
// bookings.
type QueryService struct {
	rooms     *repository.RoomRepo
	customers *repository.CustomerRepo
	ledger    *repository.BookingRepo
}

// NewQueryService constructs a QueryService and panics if any dependency
// is nil.
func NewQueryService(rooms *repository.RoomRepo, customers *repository.CustomerRepo, ledger *repository.BookingRepo) *QueryService {
	if rooms == nil || customers == nil || ledger == nil {
		panic("nil repository passed to NewQueryService")
	}
	return &QueryService{rooms: rooms, customers: customers, ledger: ledger}
}

// RoomsWithBookings lists every room in registration order with the
// bookings made against it.
func (q *QueryService) RoomsWithBookings() []model.RoomWithBookings {
	rooms := q.rooms.List()
	out := make([]model.RoomWithBookings, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, model.RoomWithBookings{
			Room:     room,
			Bookings: q.ledger.ListByRoom(room.RoomID),
		})
	}
	return out
}

// CustomersWithBookings lists every customer in the order they first
// booked, each with the bookings made under exactly their name.
func (q *QueryService) CustomersWithBookings() []model.CustomerWithBookings {
	customers := q.customers.List()
	out := make([]model.CustomerWithBookings, 0, len(customers))
	for _, c := range customers {
		out = append(out, model.CustomerWithBookings{
			Name:     c.Name,
			Bookings: q.ledger.ListByCustomer(c.Name),
		})
	}
	return out
}

// BookingsForCustomer returns the bookings whose customer name matches
// name ignoring case. The result is empty, not nil, when nothing matches.
func (q *QueryService) BookingsForCustomer(name string) []model.Booking {
	return q.ledger.ListByCustomerFold(name)
}
