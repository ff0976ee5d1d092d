package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

type stubRoundSource struct {
	round *models.ApplicationRound
	unit  *models.ReservationUnit
}

func (s *stubRoundSource) GetByPk(context.Context, int64) (*models.ApplicationRound, error) {
	if s.round == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application round not found")
	}
	return s.round, nil
}

func (s *stubRoundSource) GetUnit(context.Context, int64, int64) (*models.ReservationUnit, error) {
	if s.unit == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation unit not found")
	}
	return s.unit, nil
}

type stubAcceptedSource struct {
	keys map[string]struct{}
}

func (s *stubAcceptedSource) AcceptedSlotKeys(context.Context, int64) (map[string]struct{}, error) {
	return s.keys, nil
}

func withResult(s models.ApplicationEventSchedule, accepted, declined bool) models.ApplicationEventSchedule {
	s.Result = &models.ScheduleResult{Pk: s.Pk + 800, SchedulePk: s.Pk, Accepted: accepted, Declined: declined}
	return s
}

func newViewFixture(events []models.ApplicationEvent, accepted map[string]struct{}) *AllocationViewService {
	return NewAllocationViewService(
		&stubRoundSource{
			round: &models.ApplicationRound{Pk: 1, Name: "Winter 2026", Status: models.RoundStatusAllocated},
			unit:  &models.ReservationUnit{Pk: 7, ApplicationRoundPk: 1, Name: "Hall A"},
		},
		&stubEventSource{events: events},
		&stubAcceptedSource{keys: accepted},
		nil,
		9, 10,
		nil,
	)
}

func TestRoundStatus(t *testing.T) {
	svc := newViewFixture(nil, nil)

	status, err := svc.RoundStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Winter 2026", status.Name)
	assert.False(t, status.Allocating)
}

func TestGroupEventsPartitionsBySchedule(t *testing.T) {
	events := []models.ApplicationEvent{
		// One pending schedule, one accepted: appears in both groups.
		event(11, "Floorball",
			schedule(101, 0, "10:00:00", "12:00:00", models.PriorityPrimary),
			withResult(schedule(102, 2, "17:00:00", "19:00:00", models.PrioritySecondary), true, false)),
		event(12, "Choir",
			withResult(schedule(103, 1, "18:00:00", "20:00:00", models.PriorityPrimary), false, true)),
		event(13, "Archery",
			schedule(104, 4, "08:00:00", "10:00:00", models.PriorityPrimary)),
	}

	grouping := GroupEvents(events)

	unallocated := eventNames(grouping.Unallocated)
	assert.Equal(t, []string{"Archery", "Floorball"}, unallocated, "name-sorted")
	assert.Equal(t, []string{"Floorball"}, eventNames(grouping.Allocated))
	assert.Equal(t, []string{"Choir"}, eventNames(grouping.Declined))
}

func TestGroupEventsResultWithoutDecisionIsUnallocated(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball",
			withResult(schedule(101, 0, "10:00:00", "12:00:00", models.PriorityPrimary), false, false)),
	}

	grouping := GroupEvents(events)
	assert.Equal(t, []string{"Floorball"}, eventNames(grouping.Unallocated))
	assert.Empty(t, grouping.Allocated)
	assert.Empty(t, grouping.Declined)
}

func TestPaintPanelSplitsPriorities(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "16:00:00", models.PriorityPrimary)),
		event(12, "Choir", schedule(102, 1, "14:00:00", "15:00:00", models.PrioritySecondary)),
		event(13, "Archery", schedule(103, 3, "14:00:00", "16:00:00", models.PriorityPrimary)),
	}

	panel := PaintPanel([]string{"1-14-00", "1-14-30"}, events)
	assert.Equal(t, []string{"Floorball"}, eventNames(panel.Primary))
	assert.Equal(t, []string{"Choir"}, eventNames(panel.Secondary))
}

func TestPaintPanelEmptyStates(t *testing.T) {
	panel := PaintPanel([]string{"1-14-00"}, nil)
	assert.NotNil(t, panel.Primary)
	assert.NotNil(t, panel.Secondary)
	assert.Empty(t, panel.Primary)
	assert.Empty(t, panel.Secondary)
}

func TestUnitEventsWithSelection(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 1, "14:00:00", "16:00:00", models.PriorityPrimary)),
	}
	svc := newViewFixture(events, nil)

	resp, err := svc.UnitEvents(context.Background(), 1, 7, []string{"1-14-00"})
	require.NoError(t, err)
	require.NotNil(t, resp.Panel)
	assert.Equal(t, []string{"Floorball"}, eventNames(resp.Panel.Primary))
	assert.Equal(t, []string{"Floorball"}, eventNames(resp.Grouping.Unallocated))

	resp, err = svc.UnitEvents(context.Background(), 1, 7, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Panel)
}

func TestGridRendersOccupancy(t *testing.T) {
	events := []models.ApplicationEvent{
		event(11, "Floorball", schedule(101, 2, "09:00:00", "10:00:00", models.PriorityPrimary)),
	}
	accepted := map[string]struct{}{"2-9-30": {}}
	svc := newViewFixture(events, accepted)

	grid, err := svc.Grid(context.Background(), 1, 7, 11)
	require.NoError(t, err)
	assert.Equal(t, 9, grid.FirstHour)
	assert.Equal(t, 10, grid.LastHour)
	require.Len(t, grid.Days, 7)
	require.Len(t, grid.Days[2], 4)

	cellByKey := map[string]int{}
	for i, cell := range grid.Days[2] {
		cellByKey[cell.Key] = i
	}

	nine := grid.Days[2][cellByKey["2-9-00"]]
	assert.Equal(t, 1, nine.Count)
	assert.Equal(t, HeatLow, nine.HeatTier)
	assert.True(t, nine.Active)
	assert.False(t, nine.Accepted)

	nineThirty := grid.Days[2][cellByKey["2-9-30"]]
	assert.True(t, nineThirty.Accepted)

	ten := grid.Days[2][cellByKey["2-10-00"]]
	assert.Equal(t, 0, ten.Count)
	assert.False(t, ten.Active)
}

func eventNames(events []models.ApplicationEvent) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}
