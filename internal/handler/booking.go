package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

// BookingHandler exposes rooms, bookings and customer queries over HTTP.
// Request bodies are decoded here; everything past decoding is delegated to
// the services.
type BookingHandler struct {
	Commands *service.BookingService // room and booking creation
	Queries  *service.QueryService   // joined read views
	Logger   *slog.Logger
}

// NewBookingHandler constructs a BookingHandler and panics if a service is
// nil. A nil logger is replaced by slog.Default().
func NewBookingHandler(commands *service.BookingService, queries *service.QueryService, logger *slog.Logger) *BookingHandler {
	if commands == nil || queries == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingHandler{Commands: commands, Queries: queries, Logger: logger}
}

// invalidJSON is the response for a body that cannot be decoded.
func invalidJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON"})
}

// CreateRoom handles POST /rooms.  The body carries numberOfSeats,
// amenities and pricePerHour; the created room is returned with 201.
func (h *BookingHandler) CreateRoom(c echo.Context) error {
	var body service.CreateRoomInput
	if err := c.Bind(&body); err != nil {
		return invalidJSON(c)
	}
	room := h.Commands.CreateRoom(c.Request().Context(), body)
	return c.JSON(http.StatusCreated, room)
}

// CreateBooking handles POST /bookings.  It returns 201 with the booking,
// or 400 with a message when the room is already booked for an
// overlapping window on that date.
//
// startTime and endTime must be JSON integers in whatever unit the client
// uses consistently (hours, minutes since midnight). Clock strings such as
// "09:00" are not parsed and get the 400 Invalid JSON response.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body service.CreateBookingInput
	if err := c.Bind(&body); err != nil {
		return invalidJSON(c)
	}
	b, err := h.Commands.CreateBooking(c.Request().Context(), body)
	if err != nil {
		if errors.Is(err, repository.ErrBookingConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	return c.JSON(http.StatusCreated, b)
}

// ListRoomsWithBookings handles GET /rooms/booked.
func (h *BookingHandler) ListRoomsWithBookings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Queries.RoomsWithBookings())
}

// ListCustomersWithBookings handles GET /customers/booked.
func (h *BookingHandler) ListCustomersWithBookings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Queries.CustomersWithBookings())
}

// ListCustomerBookings handles GET /customers/:name/bookings.  The name is
// URL-decoded and matched ignoring case; no match yields an empty array.
func (h *BookingHandler) ListCustomerBookings(c echo.Context) error {
	name := c.Param("name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	h.Logger.DebugContext(c.Request().Context(), "fetching customer bookings", "customer", name)
	return c.JSON(http.StatusOK, h.Queries.BookingsForCustomer(name))
}
