package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

type stubDecisionStore struct {
	schedule *models.ApplicationEventSchedule
	accepted []models.ScheduleResult

	created  *dto.AllocationDecision
	updated  *dto.AllocationDecision
	declined []int64
	err      error
}

func (s *stubDecisionStore) GetSchedule(context.Context, int64) (*models.ApplicationEventSchedule, error) {
	if s.schedule == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application event schedule not found")
	}
	return s.schedule, nil
}

func (s *stubDecisionStore) Create(_ context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &decision
	return &models.ScheduleResult{Pk: 900, SchedulePk: decision.ApplicationEventSchedulePk, Accepted: true}, nil
}

func (s *stubDecisionStore) Update(_ context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = &decision
	return &models.ScheduleResult{Pk: 900, SchedulePk: decision.ApplicationEventSchedulePk, Accepted: true}, nil
}

func (s *stubDecisionStore) Decline(_ context.Context, schedulePk int64) error {
	if s.err != nil {
		return s.err
	}
	s.declined = append(s.declined, schedulePk)
	return nil
}

func (s *stubDecisionStore) ListAcceptedByUnit(context.Context, int64) ([]models.ScheduleResult, error) {
	return s.accepted, nil
}

type stubUnitSource struct {
	unit *models.ReservationUnit
}

func (s *stubUnitSource) GetUnit(context.Context, int64, int64) (*models.ReservationUnit, error) {
	if s.unit == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation unit not found")
	}
	return s.unit, nil
}

type stubSelectionSource struct {
	state SelectionState
}

func (s *stubSelectionSource) Current(string, int64, int64) SelectionState {
	return s.state
}

type stubInvalidator struct {
	invalidated int
}

func (s *stubInvalidator) InvalidateUnit(context.Context, int64, int64) error {
	s.invalidated++
	return nil
}

func acceptedResult(schedulePk, unitPk int64, day int, begin, end string) models.ScheduleResult {
	return models.ScheduleResult{
		Pk:                         schedulePk + 800,
		SchedulePk:                 schedulePk,
		Accepted:                   true,
		AllocatedReservationUnitPk: &unitPk,
		AllocatedDay:               &day,
		AllocatedBegin:             &begin,
		AllocatedEnd:               &end,
	}
}

func newAllocationFixture(events []models.ApplicationEvent, decisions *stubDecisionStore) (*AllocationService, *stubInvalidator) {
	invalidator := &stubInvalidator{}
	svc := NewAllocationService(
		&stubEventSource{events: events},
		decisions,
		&stubUnitSource{unit: &models.ReservationUnit{Pk: 7, ApplicationRoundPk: 1, Name: "Hall A"}},
		&stubSelectionSource{},
		invalidator,
		nil, nil, nil,
	)
	return svc, invalidator
}

func TestAcceptDerivesDecisionPayload(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)),
	}
	decisions := &stubDecisionStore{}
	svc, invalidator := newAllocationFixture(events, decisions)

	resp, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-14-00", "1-14-30", "1-15-00"},
	})
	require.NoError(t, err)

	require.NotNil(t, decisions.created)
	assert.Nil(t, decisions.updated)
	assert.True(t, decisions.created.Accepted)
	assert.Equal(t, int64(7), decisions.created.AllocatedReservationUnitPk)
	assert.Equal(t, int64(101), decisions.created.ApplicationEventSchedulePk)
	assert.Equal(t, 1, decisions.created.AllocatedDay)
	assert.Equal(t, "14:00:00", decisions.created.AllocatedBegin)
	assert.Equal(t, "15:30:00", decisions.created.AllocatedEnd)

	assert.True(t, resp.Created)
	assert.Equal(t, 1, invalidator.invalidated, "mutation must signal a refetch")
}

func TestAcceptSortsUnorderedSelection(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)),
	}
	decisions := &stubDecisionStore{}
	svc, _ := newAllocationFixture(events, decisions)

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-15-00", "1-14-00", "1-14-30"},
	})
	require.NoError(t, err)
	assert.Equal(t, "14:00:00", decisions.created.AllocatedBegin)
	assert.Equal(t, "15:30:00", decisions.created.AllocatedEnd)
}

func TestAcceptUpdatesWhenResultExists(t *testing.T) {
	sched := schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)
	sched.Result = &models.ScheduleResult{Pk: 900, SchedulePk: 101}
	events := []models.ApplicationEvent{event(11, "Floorball", sched)}
	decisions := &stubDecisionStore{}
	svc, _ := newAllocationFixture(events, decisions)

	resp, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-14-00", "1-14-30"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Nil(t, decisions.created)
	require.NotNil(t, decisions.updated)
}

func TestAcceptRequiresSingleMatchingSchedule(t *testing.T) {
	// The selection spans the boundary between two schedules, so neither
	// covers it entirely.
	events := []models.ApplicationEvent{
		event(11, "Floorball",
			schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary),
			schedule(102, 1, "15:30:00", "17:00:00", models.PrioritySecondary)),
	}
	decisions := &stubDecisionStore{}
	svc, invalidator := newAllocationFixture(events, decisions)

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-15-00", "1-15-30"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Nil(t, decisions.created)
	assert.Zero(t, invalidator.invalidated)
}

func TestAcceptRejectsGappedSelection(t *testing.T) {
	// Both selected keys avoid the accepted window, but the derived
	// allocation 10:00-13:00 would engulf it. The gap must be rejected
	// before any window is derived.
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "10:00:00", "13:00:00", models.PriorityPrimary)),
	}
	decisions := &stubDecisionStore{
		accepted: []models.ScheduleResult{acceptedResult(555, 7, 1, "11:00:00", "12:00:00")},
	}
	svc, invalidator := newAllocationFixture(events, decisions)

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-10-00", "1-12-30"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Nil(t, decisions.created)
	assert.Zero(t, invalidator.invalidated)
}

func TestAcceptRejectsCrossDaySelection(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)),
	}
	decisions := &stubDecisionStore{}
	svc, _ := newAllocationFixture(events, decisions)

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-14-00", "2-14-00"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Nil(t, decisions.created)
}

func TestAcceptBlockedByAcceptedSlots(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)),
	}
	decisions := &stubDecisionStore{
		accepted: []models.ScheduleResult{acceptedResult(555, 7, 1, "14:00:00", "15:00:00")},
	}
	svc, _ := newAllocationFixture(events, decisions)

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-14-30", "1-15-00"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSlotTaken.Code, appErr.Code)
	assert.Nil(t, decisions.created)
}

func TestAcceptIgnoresOwnPriorResult(t *testing.T) {
	sched := schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)
	sched.Result = &models.ScheduleResult{Pk: 900, SchedulePk: 101, Accepted: true}
	events := []models.ApplicationEvent{event(11, "Floorball", sched)}
	decisions := &stubDecisionStore{
		accepted: []models.ScheduleResult{acceptedResult(101, 7, 1, "14:00:00", "15:00:00")},
	}
	svc, _ := newAllocationFixture(events, decisions)

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
		SlotKeys:           []string{"1-14-00", "1-14-30"},
	})
	assert.NoError(t, err, "re-deciding the same schedule must not collide with itself")
}

func TestAcceptRequiresSelection(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)),
	}
	svc, _ := newAllocationFixture(events, &stubDecisionStore{})

	_, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAcceptUsesStoredSelection(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)),
	}
	decisions := &stubDecisionStore{}
	invalidator := &stubInvalidator{}
	svc := NewAllocationService(
		&stubEventSource{events: events},
		decisions,
		&stubUnitSource{unit: &models.ReservationUnit{Pk: 7, ApplicationRoundPk: 1}},
		&stubSelectionSource{state: SelectionState{Status: SelectionConfirmed, Keys: []string{"1-14-00", "1-14-30"}}},
		invalidator,
		nil, nil, nil,
	)

	resp, err := svc.Accept(context.Background(), "user-1", dto.AcceptAllocationRequest{
		ApplicationRoundPk: 1,
		ReservationUnitPk:  7,
		ApplicationEventPk: 11,
	})
	require.NoError(t, err)
	assert.Equal(t, "14:00:00", resp.AllocatedBegin)
	assert.Equal(t, "15:00:00", resp.AllocatedEnd)
}

func TestDecline(t *testing.T) {
	sched := schedule(101, 1, "14:00:00", "15:30:00", models.PriorityPrimary)
	decisions := &stubDecisionStore{schedule: &sched}
	svc, invalidator := newAllocationFixture(nil, decisions)

	err := svc.Decline(context.Background(), dto.DeclineAllocationRequest{
		ApplicationRoundPk:         1,
		ReservationUnitPk:          7,
		ApplicationEventSchedulePk: 101,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, decisions.declined)
	assert.Equal(t, 1, invalidator.invalidated)
}

func TestDeclineUnknownSchedule(t *testing.T) {
	svc, _ := newAllocationFixture(nil, &stubDecisionStore{})

	err := svc.Decline(context.Background(), dto.DeclineAllocationRequest{
		ApplicationRoundPk:         1,
		ReservationUnitPk:          7,
		ApplicationEventSchedulePk: 999,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
