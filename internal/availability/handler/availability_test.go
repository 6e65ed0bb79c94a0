package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	availerrors "calendar/internal/availability/errors"
	httputil "calendar/pkg/http"
	"calendar/pkg/logger"
	"calendar/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAvailabilityService struct {
	createFunc func(ctx context.Context, req *model.AvailabilitySetupRequest) (string, error)
	updateFunc func(ctx context.Context, req *model.AvailabilitySetupRequest) (*model.UpdateRulesResult, error)
	slotsFunc  func(ctx context.Context, ownerID string, date time.Time) ([]model.Slot, error)
}

func (m *mockAvailabilityService) CreateRules(ctx context.Context, req *model.AvailabilitySetupRequest) (string, error) {
	return m.createFunc(ctx, req)
}

func (m *mockAvailabilityService) UpdateRules(ctx context.Context, req *model.AvailabilitySetupRequest) (*model.UpdateRulesResult, error) {
	return m.updateFunc(ctx, req)
}

func (m *mockAvailabilityService) GetAvailableSlots(ctx context.Context, ownerID string, date time.Time) ([]model.Slot, error) {
	return m.slotsFunc(ctx, ownerID, date)
}

func serve(h *AvailabilityHandler, method, target, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const setupBody = `{"owner_id":"owner","rules":[{"day_of_week":"MONDAY","start_time":"16:00","end_time":"00:00"}]}`

func TestCreateRules_DecodesWireFormat(t *testing.T) {
	var got *model.AvailabilitySetupRequest
	h := NewAvailabilityHandler(&mockAvailabilityService{
		createFunc: func(_ context.Context, req *model.AvailabilitySetupRequest) (string, error) {
			got = req
			return "Availability rules created successfully for owner id: owner", nil
		},
	}, logger.Discard())

	w := serve(h, http.MethodPost, "/api/v1/availability/setup", setupBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NotNil(t, got)
	require.Len(t, got.Rules, 1)
	assert.Equal(t, model.DayOfWeek(time.Monday), got.Rules[0].DayOfWeek)
	assert.Equal(t, model.NewTimeOfDay(16, 0), got.Rules[0].StartTime)
	assert.Equal(t, model.TimeOfDay(0), got.Rules[0].EndTime)

	var resp httputil.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Availability rules created successfully for owner id: owner", resp.Message)
}

func TestCreateRules_Conflict(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{
		createFunc: func(_ context.Context, req *model.AvailabilitySetupRequest) (string, error) {
			return "", availerrors.RulesAlreadyExist(req.OwnerID)
		},
	}, logger.Discard())

	w := serve(h, http.MethodPost, "/api/v1/availability/setup", setupBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RULES_ALREADY_EXIST")
}

func TestCreateRules_BadTimeOfDay(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{}, logger.Discard())

	w := serve(h, http.MethodPost, "/api/v1/availability/setup",
		`{"owner_id":"owner","rules":[{"day_of_week":"MONDAY","start_time":"4pm","end_time":"18:00"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRules_StatusFollowsCreated(t *testing.T) {
	for _, created := range []bool{true, false} {
		h := NewAvailabilityHandler(&mockAvailabilityService{
			updateFunc: func(context.Context, *model.AvailabilitySetupRequest) (*model.UpdateRulesResult, error) {
				return &model.UpdateRulesResult{Message: "ok", Created: created}, nil
			},
		}, logger.Discard())

		w := serve(h, http.MethodPut, "/api/v1/availability/setup", setupBody)
		if created {
			assert.Equal(t, http.StatusCreated, w.Code)
		} else {
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
}

func TestGetAvailableSlots(t *testing.T) {
	var gotOwner string
	var gotDate time.Time
	slots := []model.Slot{{StartDateTime: "2030-01-07 16:00:00", EndDateTime: "2030-01-07 17:00:00"}}
	h := NewAvailabilityHandler(&mockAvailabilityService{
		slotsFunc: func(_ context.Context, ownerID string, date time.Time) ([]model.Slot, error) {
			gotOwner, gotDate = ownerID, date
			if ownerID == "empty" {
				return []model.Slot{}, nil
			}
			return slots, nil
		},
	}, logger.Discard())

	w := serve(h, http.MethodGet, "/api/v1/availability/owner/slots?date=2030-01-07", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", gotOwner)
	assert.Equal(t, time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), gotDate)
	assert.Contains(t, w.Body.String(), "Available slots fetched successfully for owner id: owner")
	assert.Contains(t, w.Body.String(), `"start_date_time":"2030-01-07 16:00:00"`)

	w = serve(h, http.MethodGet, "/api/v1/availability/empty/slots?date=2030-01-07", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No Available slots found")
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestGetAvailableSlots_BadDate(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{}, logger.Discard())

	for _, q := range []string{"", "?date=07-01-2030", "?date=2030-02-30"} {
		w := serve(h, http.MethodGet, "/api/v1/availability/owner/slots"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
