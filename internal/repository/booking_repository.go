package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// BookingRepo is the booking ledger. It is append-only: bookings are never
// modified or removed once committed.
type BookingRepo struct {
	mu        sync.RWMutex
	bookings  []model.Booking
	lastID    int
	rule      OverlapRule
	customers *CustomerRepo
}

// NewBookingRepo constructs an empty ledger that registers customers in
// customers and rejects conflicts according to rule. It panics if
// customers is nil.
func NewBookingRepo(customers *CustomerRepo, rule OverlapRule) *BookingRepo {
	if customers == nil {
		panic("nil customer repository passed to NewBookingRepo")
	}
	return &BookingRepo{customers: customers, rule: rule}
}

// Rule returns the overlap rule the ledger enforces.
func (r *BookingRepo) Rule() OverlapRule { return r.rule }

// Create commits a booking for roomID on date covering [start, end). It
// returns ErrBookingConflict when the window overlaps an existing booking
// for the same room and date. Neither the room id nor the order of start
// and end is validated.
//
// The availability check, the append and the customer registration run
// under one write lock so two concurrent requests cannot both observe a
// free slot and both commit.
func (r *BookingRepo) Create(ctx context.Context, customerName, date string, start, end, roomID int) (model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return model.Booking{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.rule.IsAvailable(roomID, date, start, end, r.bookings) {
		return model.Booking{}, ErrBookingConflict
	}

	r.lastID++
	b := model.Booking{
		BookingID:    r.lastID,
		CustomerName: customerName,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		RoomID:       roomID,
	}
	r.bookings = append(r.bookings, b)
	r.customers.Ensure(customerName)
	return b, nil
}

// List returns every booking in commit order.
func (r *BookingRepo) List() []model.Booking {
	return r.filter(func(model.Booking) bool { return true })
}

// ListByRoom returns the bookings made against roomID.
func (r *BookingRepo) ListByRoom(roomID int) []model.Booking {
	return r.filter(func(b model.Booking) bool { return b.RoomID == roomID })
}

// ListByCustomer returns the bookings whose customer name equals name
// exactly.
func (r *BookingRepo) ListByCustomer(name string) []model.Booking {
	return r.filter(func(b model.Booking) bool { return b.CustomerName == name })
}

// ListByCustomerFold returns the bookings whose customer name equals name
// after lower-casing both sides.
func (r *BookingRepo) ListByCustomerFold(name string) []model.Booking {
	want := strings.ToLower(name)
	return r.filter(func(b model.Booking) bool { return strings.ToLower(b.CustomerName) == want })
}

// filter never returns nil so empty results encode as [] in JSON.
func (r *BookingRepo) filter(keep func(model.Booking) bool) []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
