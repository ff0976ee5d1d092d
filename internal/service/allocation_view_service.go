package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/models"
)

// RoundSource loads application rounds.
type RoundSource interface {
	GetByPk(ctx context.Context, pk int64) (*models.ApplicationRound, error)
	GetUnit(ctx context.Context, roundPk, unitPk int64) (*models.ReservationUnit, error)
}

// AcceptedSlotSource derives the occupied slot set of a unit.
type AcceptedSlotSource interface {
	AcceptedSlotKeys(ctx context.Context, unitPk int64) (map[string]struct{}, error)
}

// AllocationViewService renders one reservation unit's allocation calendar:
// the occupancy grid, the event groupings and the painted action panel.
type AllocationViewService struct {
	rounds    RoundSource
	events    AllocationEventSource
	accepted  AcceptedSlotSource
	cache     *CacheService
	firstHour int
	lastHour  int
	logger    *zap.Logger
}

// NewAllocationViewService constructs the service.
func NewAllocationViewService(
	rounds RoundSource,
	events AllocationEventSource,
	accepted AcceptedSlotSource,
	cache *CacheService,
	firstHour, lastHour int,
	logger *zap.Logger,
) *AllocationViewService {
	if firstHour <= 0 && lastHour <= 0 {
		firstHour, lastHour = DefaultFirstHour, DefaultLastHour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationViewService{
		rounds:    rounds,
		events:    events,
		accepted:  accepted,
		cache:     cache,
		firstHour: firstHour,
		lastHour:  lastHour,
		logger:    logger,
	}
}

// RoundStatus backs the allocation-run poll of the surrounding page.
func (s *AllocationViewService) RoundStatus(ctx context.Context, roundPk int64) (*dto.RoundStatusResponse, error) {
	round, err := s.rounds.GetByPk(ctx, roundPk)
	if err != nil {
		return nil, err
	}
	return &dto.RoundStatusResponse{
		Pk:         round.Pk,
		Name:       round.Name,
		Status:     round.Status,
		Allocating: round.Allocating(),
	}, nil
}

// UnitEvents groups a unit's events by decision state and, when a selection
// is supplied, paints the intersecting events into priority tiers.
func (s *AllocationViewService) UnitEvents(ctx context.Context, roundPk, unitPk int64, selection []string) (*dto.UnitEventsResponse, error) {
	if _, err := s.rounds.GetUnit(ctx, roundPk, unitPk); err != nil {
		return nil, err
	}

	cacheKey := UnitKey(roundPk, unitPk, "events")
	if len(selection) == 0 && s.cache.Enabled() {
		var cached dto.UnitEventsResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	events, err := s.events.ListByUnit(ctx, roundPk, unitPk)
	if err != nil {
		return nil, err
	}

	resp := &dto.UnitEventsResponse{Grouping: GroupEvents(events)}
	if len(selection) > 0 {
		panel := PaintPanel(selection, events)
		resp.Panel = &panel
	}

	if len(selection) == 0 && s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, resp, 0); err != nil {
			s.logger.Warn("events cache write failed", zap.Int64("unit_pk", unitPk), zap.Error(err))
		}
	}
	return resp, nil
}

// Grid renders the weekly grid with per-slot occupancy, heat tier, accepted
// flags and the active event's covered keys.
func (s *AllocationViewService) Grid(ctx context.Context, roundPk, unitPk, activeEventPk int64) (*dto.GridResponse, error) {
	if _, err := s.rounds.GetUnit(ctx, roundPk, unitPk); err != nil {
		return nil, err
	}

	events, err := s.events.ListByUnit(ctx, roundPk, unitPk)
	if err != nil {
		return nil, err
	}

	occupied := map[string]struct{}{}
	if s.accepted != nil {
		occupied, err = s.accepted.AcceptedSlotKeys(ctx, unitPk)
		if err != nil {
			return nil, err
		}
	}

	active := map[string]struct{}{}
	if activeEventPk > 0 {
		if event := findEvent(events, activeEventPk); event != nil {
			for _, key := range TimeSlots(event.Schedules) {
				active[key] = struct{}{}
			}
		}
	}

	grid := BuildTimeGrid(s.firstHour, s.lastHour)
	days := make([][]dto.GridCell, len(grid))
	for day, slots := range grid {
		cells := make([]dto.GridCell, 0, len(slots))
		for _, slot := range slots {
			key := slot.Key()
			count := SlotEventCount([]string{key}, events)
			_, isAccepted := occupied[key]
			_, isActive := active[key]
			cells = append(cells, dto.GridCell{
				Key:      key,
				Day:      slot.Day,
				Hour:     slot.Hour,
				Minute:   slot.Minute,
				Count:    count,
				HeatTier: HeatTier(count),
				Accepted: isAccepted,
				Active:   isActive,
			})
		}
		days[day] = cells
	}

	return &dto.GridResponse{
		FirstHour: s.firstHour,
		LastHour:  s.lastHour,
		Days:      days,
	}, nil
}

// GroupEvents partitions events into unallocated, allocated and declined
// groups by schedule state. Allocation is per schedule, so an event whose
// schedules diverge appears in several groups. Each group is name-sorted.
func GroupEvents(events []models.ApplicationEvent) models.EventGrouping {
	grouping := models.EventGrouping{
		Unallocated: []models.ApplicationEvent{},
		Allocated:   []models.ApplicationEvent{},
		Declined:    []models.ApplicationEvent{},
	}

	for _, event := range events {
		var unresolved, allocated, declined bool
		for _, schedule := range event.Schedules {
			if schedule.Unresolved() {
				unresolved = true
			}
			if schedule.Result != nil && schedule.Result.Accepted {
				allocated = true
			}
			if schedule.Result != nil && schedule.Result.Declined {
				declined = true
			}
		}
		if unresolved {
			grouping.Unallocated = append(grouping.Unallocated, event)
		}
		if allocated {
			grouping.Allocated = append(grouping.Allocated, event)
		}
		if declined {
			grouping.Declined = append(grouping.Declined, event)
		}
	}

	sortEventsByName(grouping.Unallocated)
	sortEventsByName(grouping.Allocated)
	sortEventsByName(grouping.Declined)
	return grouping
}

// PaintPanel splits the events intersecting a selection into primary and
// secondary preference tiers. An event lands in a tier when one of its
// fitting schedules carries that priority.
func PaintPanel(selection []string, events []models.ApplicationEvent) dto.EventPanel {
	panel := dto.EventPanel{
		Primary:   []models.ApplicationEvent{},
		Secondary: []models.ApplicationEvent{},
	}

	for _, event := range SlotEvents(selection, events) {
		var primary, secondary bool
		for _, schedule := range event.Schedules {
			if !SomeSlotsFitSchedule(schedule, selection) {
				continue
			}
			switch schedule.Priority {
			case models.PriorityPrimary:
				primary = true
			case models.PrioritySecondary:
				secondary = true
			}
		}
		if primary {
			panel.Primary = append(panel.Primary, event)
		}
		if secondary {
			panel.Secondary = append(panel.Secondary, event)
		}
	}

	sortEventsByName(panel.Primary)
	sortEventsByName(panel.Secondary)
	return panel
}

func sortEventsByName(events []models.ApplicationEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Name != events[j].Name {
			return events[i].Name < events[j].Name
		}
		return events[i].Pk < events[j].Pk
	})
}
