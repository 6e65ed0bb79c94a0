package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apptserrors "calendar/internal/appointments/errors"
	userserrors "calendar/internal/users/errors"
	httputil "calendar/pkg/http"
	"calendar/pkg/logger"
	"calendar/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAppointmentService struct {
	bookFunc     func(ctx context.Context, key string, req *model.BookAppointmentRequest) (*model.BookResult, error)
	upcomingFunc func(ctx context.Context, ownerID string, limit int, offset int64) ([]model.UpcomingAppointment, int64, error)
}

func (m *mockAppointmentService) Book(ctx context.Context, key string, req *model.BookAppointmentRequest) (*model.BookResult, error) {
	return m.bookFunc(ctx, key, req)
}

func (m *mockAppointmentService) GetUpcoming(ctx context.Context, ownerID string, limit int, offset int64) ([]model.UpcomingAppointment, int64, error) {
	return m.upcomingFunc(ctx, ownerID, limit, offset)
}

func serve(h *AppointmentHandler, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const bookBody = `{"owner_id":"owner","invitee_id":"alice","start_date_time":"2030-01-07 22:00:00"}`

func bookRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/book", strings.NewReader(body))
	if key != "" {
		req.Header.Set(httputil.HeaderIdempotencyKey, key)
	}
	return req
}

func TestBook_StatusFollowsNewlyCreated(t *testing.T) {
	tests := []struct {
		name       string
		created    bool
		wantStatus int
	}{
		{name: "new booking", created: true, wantStatus: http.StatusCreated},
		{name: "replay", created: false, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey string
			var gotReq *model.BookAppointmentRequest
			h := NewAppointmentHandler(&mockAppointmentService{
				bookFunc: func(_ context.Context, key string, req *model.BookAppointmentRequest) (*model.BookResult, error) {
					gotKey, gotReq = key, req
					return &model.BookResult{AppointmentID: "appt-1", NewlyCreated: tt.created, Message: "ok"}, nil
				},
			}, logger.Discard())

			w := serve(h, bookRequest("key-1", bookBody))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "key-1", gotKey)
			require.NotNil(t, gotReq)
			assert.Equal(t, "owner", gotReq.OwnerID)
			assert.Equal(t, "2030-01-07 22:00:00", gotReq.StartDateTime)

			var resp struct {
				Message string           `json:"message"`
				Data    model.BookResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Message)
			assert.Equal(t, "appt-1", resp.Data.AppointmentID)
			assert.Equal(t, tt.created, resp.Data.NewlyCreated)
		})
	}
}

func TestBook_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "slot taken", err: apptserrors.SlotAlreadyBooked("owner"), body: bookBody, wantStatus: http.StatusConflict, wantCode: "SLOT_ALREADY_BOOKED"},
		{name: "no slot", err: apptserrors.AvailableSlotNotFound("owner", time.Date(2030, 1, 7, 23, 0, 0, 0, time.UTC)), body: bookBody, wantStatus: http.StatusBadRequest, wantCode: "AVAILABLE_SLOT_NOT_FOUND"},
		{name: "unknown user", err: userserrors.UserNotFound("owner"), body: bookBody, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "missing key", err: apptserrors.MissingIdempotencyKey(), body: bookBody, wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "unknown field", body: `{"owner":"x"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&mockAppointmentService{
				bookFunc: func(context.Context, string, *model.BookAppointmentRequest) (*model.BookResult, error) {
					return nil, tt.err
				},
			}, logger.Discard())

			w := serve(h, bookRequest("k", tt.body))
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestGetUpcoming(t *testing.T) {
	start := time.Date(2030, 1, 7, 16, 0, 0, 0, time.UTC)
	var gotLimit int
	var gotOffset int64
	h := NewAppointmentHandler(&mockAppointmentService{
		upcomingFunc: func(_ context.Context, ownerID string, limit int, offset int64) ([]model.UpcomingAppointment, int64, error) {
			assert.Equal(t, "owner", ownerID)
			gotLimit, gotOffset = limit, offset
			return []model.UpcomingAppointment{{
				Appointment: model.Appointment{
					AppointmentID: "a1", OwnerID: "owner", InviteeID: "alice",
					StartTime: start, EndTime: start.Add(time.Hour),
				},
				InviteeName:  "Alice",
				InviteeEmail: "alice@example.com",
			}}, 7, nil
		},
	}, logger.Discard())

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/owner/owner/upcoming?limit=1&offset=3", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, gotLimit)
	assert.EqualValues(t, 3, gotOffset)

	body := w.Body.String()
	assert.Contains(t, body, `"total_count":7`)
	assert.Contains(t, body, `"start_time":"2030-01-07 16:00:00"`)
	assert.Contains(t, body, `"invitee_name":"Alice"`)
}

func TestGetUpcoming_Errors(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{
		upcomingFunc: func(_ context.Context, ownerID string, _ int, _ int64) ([]model.UpcomingAppointment, int64, error) {
			return nil, 0, userserrors.UserNotFound(ownerID)
		},
	}, logger.Discard())

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/owner/ghost/upcoming", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/owner/ghost/upcoming?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
