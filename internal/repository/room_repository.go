package repository

import (
	"sync"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// RoomRepo is the room registry. It owns every Room and hands out copies.
type RoomRepo struct {
	mu     sync.RWMutex
	rooms  []model.Room
	lastID int // last assigned room id
}

// NewRoomRepo constructs an empty RoomRepo.
func NewRoomRepo() *RoomRepo {
	return &RoomRepo{}
}

// Create registers a new room and returns it with its assigned RoomID.
// Input fields are stored as given.
func (r *RoomRepo) Create(numberOfSeats int, amenities []string, pricePerHour float64) model.Room {
	room := model.Room{
		NumberOfSeats: numberOfSeats,
		Amenities:     amenities,
		PricePerHour:  pricePerHour,
	}.Clone() // never nil amenities, so they encode as []

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	room.RoomID = r.lastID
	r.rooms = append(r.rooms, room)
	return room.Clone()
}

// List returns every room in registration order.
func (r *RoomRepo) List() []model.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Clone())
	}
	return out
}
