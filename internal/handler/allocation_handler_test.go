package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/middleware"
	"github.com/venuehub/allocation-api/internal/models"
	"github.com/venuehub/allocation-api/internal/service"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

type fakeEventSource struct {
	events []models.ApplicationEvent
}

func (f *fakeEventSource) ListByUnit(context.Context, int64, int64) ([]models.ApplicationEvent, error) {
	return f.events, nil
}

type fakeRoundSource struct{}

func (f *fakeRoundSource) GetByPk(context.Context, int64) (*models.ApplicationRound, error) {
	return &models.ApplicationRound{Pk: 1, Name: "Winter 2026", Status: models.RoundStatusInAllocation}, nil
}

func (f *fakeRoundSource) GetUnit(context.Context, int64, int64) (*models.ReservationUnit, error) {
	return &models.ReservationUnit{Pk: 7, ApplicationRoundPk: 1, Name: "Hall A"}, nil
}

type fakeDecisionStore struct {
	created *dto.AllocationDecision
}

func (f *fakeDecisionStore) GetSchedule(context.Context, int64) (*models.ApplicationEventSchedule, error) {
	return nil, appErrors.ErrNotFound
}

func (f *fakeDecisionStore) Create(_ context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error) {
	f.created = &decision
	return &models.ScheduleResult{Pk: 900, SchedulePk: decision.ApplicationEventSchedulePk, Accepted: true}, nil
}

func (f *fakeDecisionStore) Update(_ context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error) {
	return &models.ScheduleResult{Pk: 900, SchedulePk: decision.ApplicationEventSchedulePk, Accepted: true}, nil
}

func (f *fakeDecisionStore) Decline(context.Context, int64) error { return nil }

func (f *fakeDecisionStore) ListAcceptedByUnit(context.Context, int64) ([]models.ScheduleResult, error) {
	return nil, nil
}

type fakeAcceptedSource struct{}

func (f *fakeAcceptedSource) AcceptedSlotKeys(context.Context, int64) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func floorballEvents() []models.ApplicationEvent {
	return []models.ApplicationEvent{{
		Pk:   11,
		Name: "Floorball",
		Schedules: []models.ApplicationEventSchedule{{
			Pk:                 101,
			ApplicationEventPk: 11,
			Day:                1,
			Begin:              "14:00:00",
			End:                "15:30:00",
			Priority:           models.PriorityPrimary,
		}},
	}}
}

func newHandlerFixture(decisions *fakeDecisionStore) *AllocationHandler {
	events := &fakeEventSource{events: floorballEvents()}
	rounds := &fakeRoundSource{}
	selections := service.NewSelectionService(events, time.Minute, nil, nil, nil)
	allocation := service.NewAllocationService(events, decisions, rounds, selections, nil, nil, nil, nil)
	view := service.NewAllocationViewService(rounds, events, &fakeAcceptedSource{}, nil, 7, 23, nil)
	return NewAllocationHandler(view, allocation, selections)
}

func testContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleAllocator})
	return c, rec
}

func TestAllocationHandlerRoundStatus(t *testing.T) {
	handler := newHandlerFixture(&fakeDecisionStore{})

	c, rec := testContext(t, http.MethodGet, "/application-rounds/1/status", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.RoundStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.RoundStatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Allocating)
}

func TestAllocationHandlerRoundStatusInvalidPk(t *testing.T) {
	handler := newHandlerFixture(&fakeDecisionStore{})

	c, rec := testContext(t, http.MethodGet, "/application-rounds/abc/status", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.RoundStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllocationHandlerGrid(t *testing.T) {
	handler := newHandlerFixture(&fakeDecisionStore{})

	c, rec := testContext(t, http.MethodGet, "/application-rounds/1/reservation-units/7/grid?activeEvent=11", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}, {Key: "unitId", Value: "7"}}

	handler.Grid(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.GridResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Days, 7)
	assert.Len(t, envelope.Data.Days[0], 2*(23-7+1))
}

func TestAllocationHandlerAccept(t *testing.T) {
	decisions := &fakeDecisionStore{}
	handler := newHandlerFixture(decisions)

	c, rec := testContext(t, http.MethodPost, "/allocations", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-14-00", "1-14-30", "1-15-00"},
	})

	handler.Accept(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, decisions.created)
	assert.Equal(t, 1, decisions.created.AllocatedDay)
	assert.Equal(t, "14:00:00", decisions.created.AllocatedBegin)
	assert.Equal(t, "15:30:00", decisions.created.AllocatedEnd)
}

func TestAllocationHandlerAcceptPreconditionFailure(t *testing.T) {
	handler := newHandlerFixture(&fakeDecisionStore{})

	// No stored selection and no explicit keys.
	c, rec := testContext(t, http.MethodPost, "/allocations", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
	})

	handler.Accept(c)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestAllocationHandlerAcceptMalformedBody(t *testing.T) {
	handler := newHandlerFixture(&fakeDecisionStore{})

	c, rec := testContext(t, http.MethodPost, "/allocations", nil)

	handler.Accept(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllocationHandlerDecline(t *testing.T) {
	handler := newHandlerFixture(&fakeDecisionStore{})

	c, rec := testContext(t, http.MethodPost, "/allocations/decline", dto.DeclineAllocationRequest{
		ApplicationRoundPk:         1,
		ReservationUnitPk:          7,
		ApplicationEventSchedulePk: 999,
	})

	handler.Decline(c)

	// The fake store knows no schedules.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
