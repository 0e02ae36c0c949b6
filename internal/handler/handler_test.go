package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

func newHandler() *BookingHandler {
	return newHandlerWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newHandlerWithLogger(logger *slog.Logger) *BookingHandler {
	rooms := repository.NewRoomRepo()
	customers := repository.NewCustomerRepo()
	ledger := repository.NewBookingRepo(customers, repository.OverlapLegacy)
	return NewBookingHandler(
		service.NewBookingService(rooms, ledger, nil, logger),
		service.NewQueryService(rooms, customers, ledger),
		logger,
	)
}

func jsonRequest(ctx context.Context, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func Test_CreateBooking_CancelledRequestIsServerError(t *testing.T) {
	h := newHandler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, rec := jsonRequest(ctx, `{"customerName":"Alice","date":"2024-01-01","startTime":9,"endTime":10,"roomId":1}`)

	require.NoError(t, h.CreateBooking(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, h.Queries.BookingsForCustomer("Alice"))
}

func Test_CreateBooking_WrongFieldTypeIsInvalidJSON(t *testing.T) {
	h := newHandler()
	c, rec := jsonRequest(context.Background(), `{"customerName":"Alice","startTime":"nine"}`)

	require.NoError(t, h.CreateBooking(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, rec.Body.String())
}

func Test_CreateBooking_ClockStringTimesAreInvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"clock_start", `{"customerName":"Alice","date":"2024-01-01","startTime":"09:00","endTime":10,"roomId":1}`},
		{"clock_end", `{"customerName":"Alice","date":"2024-01-01","startTime":9,"endTime":"10:00","roomId":1}`},
		{"quoted_number", `{"customerName":"Alice","date":"2024-01-01","startTime":"9","endTime":10,"roomId":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler()
			c, rec := jsonRequest(context.Background(), tt.body)

			require.NoError(t, h.CreateBooking(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid JSON"}`, rec.Body.String())
			assert.Empty(t, h.Queries.BookingsForCustomer("Alice"))
		})
	}
}

func Test_ListCustomerBookings_LogsThroughSlog(t *testing.T) {
	var logs bytes.Buffer
	h := newHandlerWithLogger(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/customers/Ann%20Lee/bookings", nil), rec)
	c.SetPath("/customers/:name/bookings")
	c.SetParamNames("name")
	c.SetParamValues("Ann%20Lee")

	require.NoError(t, h.ListCustomerBookings(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), `"msg":"fetching customer bookings"`)
	assert.Contains(t, logs.String(), `"customer":"Ann Lee"`)
	assert.Contains(t, logs.String(), `"level":"DEBUG"`)
}

func Test_JSONSerializer_Indent(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, JSONSerializer{}.Serialize(c, map[string]int{"a": 1}, "  "))

	assert.JSONEq(t, `{"a":1}`, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "\n  \"a\"")
}

func Test_JSONSerializer_DeserializeError(t *testing.T) {
	c, _ := jsonRequest(context.Background(), `[`)

	var v map[string]any
	err := JSONSerializer{}.Deserialize(c, &v)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func Test_NewBookingHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewBookingHandler(nil, nil, nil) })
}
