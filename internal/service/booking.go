package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// CreateRoomInput holds the caller-supplied fields of a new room.
type CreateRoomInput struct {
	NumberOfSeats int      `json:"numberOfSeats"`
	Amenities     []string `json:"amenities"`
	PricePerHour  float64  `json:"pricePerHour"`
}

// CreateBookingInput holds the caller-supplied fields of a new booking.
type CreateBookingInput struct {
	CustomerName string `json:"customerName"`
	Date         string `json:"date"`
	StartTime    int    `json:"startTime"`
	EndTime      int    `json:"endTime"`
	RoomID       int    `json:"roomId"`
}

// BookingService executes the write operations. Events are published only
// after the ledger has committed, and a failed publish never undoes or
// fails the booking.
type BookingService struct {
	rooms  *repository.RoomRepo
	ledger *repository.BookingRepo
	pub    EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewBookingService wires a BookingService. A nil publisher is replaced by
// NopPublisher and a nil logger by slog.Default(). It panics if a
// repository is nil.
func NewBookingService(rooms *repository.RoomRepo, ledger *repository.BookingRepo, pub EventPublisher, logger *slog.Logger) *BookingService {
	if rooms == nil || ledger == nil {
		panic("nil repository passed to NewBookingService")
	}
	if pub == nil {
		pub = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{rooms: rooms, ledger: ledger, pub: pub, logger: logger, now: time.Now}
}

// CreateRoom registers a room.
func (s *BookingService) CreateRoom(ctx context.Context, in CreateRoomInput) model.Room {
	room := s.rooms.Create(in.NumberOfSeats, in.Amenities, in.PricePerHour)
	s.logger.InfoContext(ctx, "room added",
		"room_id", room.RoomID,
		"seats", room.NumberOfSeats,
		"price_per_hour", room.PricePerHour,
	)
	return room
}

// CreateBooking books a room. It returns repository.ErrBookingConflict
// when the requested window is taken.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	b, err := s.ledger.Create(ctx, in.CustomerName, in.Date, in.StartTime, in.EndTime, in.RoomID)
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.InfoContext(ctx, "booking added",
		"booking_id", b.BookingID,
		"customer", b.CustomerName,
		"room_id", b.RoomID,
		"date", b.Date,
		"start", b.StartTime,
		"end", b.EndTime,
	)

	ev := queue.NewBookingCreatedEvent(b, s.now())
	if err := s.pub.PublishBookingCreated(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "publish booking event failed", "booking_id", b.BookingID, "error", err)
	}
	return b, nil
}
