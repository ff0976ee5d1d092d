package service

import (
	"context"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

// Postgres raises 42501 when the role lacks table privileges.
const pgInsufficientPrivilege = "42501"

// AllocationEventSource loads the events competing for a unit's grid.
type AllocationEventSource interface {
	ListByUnit(ctx context.Context, roundPk, unitPk int64) ([]models.ApplicationEvent, error)
}

// DecisionStore persists accept/decline results per schedule.
type DecisionStore interface {
	GetSchedule(ctx context.Context, schedulePk int64) (*models.ApplicationEventSchedule, error)
	Create(ctx context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error)
	Update(ctx context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error)
	Decline(ctx context.Context, schedulePk int64) error
	ListAcceptedByUnit(ctx context.Context, unitPk int64) ([]models.ScheduleResult, error)
}

// UnitSource verifies reservation units exist within their round.
type UnitSource interface {
	GetUnit(ctx context.Context, roundPk, unitPk int64) (*models.ReservationUnit, error)
}

// SelectionSource reads the caller's stored selection.
type SelectionSource interface {
	Current(userID string, roundPk, unitPk int64) SelectionState
}

// CacheInvalidator signals readers to refetch after a mutation.
type CacheInvalidator interface {
	InvalidateUnit(ctx context.Context, roundPk, unitPk int64) error
}

// AllocationService submits allocation decisions: it derives the allocated
// window from the confirmed selection and creates or updates the matched
// schedule's result. The database round trip is the sole arbiter of
// conflicting accepts.
type AllocationService struct {
	events     AllocationEventSource
	decisions  DecisionStore
	units      UnitSource
	selections SelectionSource
	cache      CacheInvalidator
	metrics    *MetricsService
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewAllocationService constructs the service.
func NewAllocationService(
	events AllocationEventSource,
	decisions DecisionStore,
	units UnitSource,
	selections SelectionSource,
	cache CacheInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		events:     events,
		decisions:  decisions,
		units:      units,
		selections: selections,
		cache:      cache,
		metrics:    metrics,
		validate:   validate,
		logger:     logger,
	}
}

// Accept assigns the selection to the single schedule of the chosen event
// that covers it entirely.
func (s *AllocationService) Accept(ctx context.Context, userID string, req dto.AcceptAllocationRequest) (*dto.AllocationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation request")
	}

	unit, err := s.units.GetUnit(ctx, req.ApplicationRoundPk, req.ReservationUnitPk)
	if err != nil {
		return nil, err
	}

	selection := req.SlotKeys
	if len(selection) == 0 && s.selections != nil {
		selection = s.selections.Current(userID, req.ApplicationRoundPk, req.ReservationUnitPk).Keys
	}
	if len(selection) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no slots selected")
	}
	slots, err := parseSelection(selection)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	// The allocated window spans first..last, so a gapped or multi-day
	// selection would silently claim slots the caller never picked.
	if !contiguousSlots(slots) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "selected slots must form one contiguous same-day run")
	}

	events, err := s.events.ListByUnit(ctx, req.ApplicationRoundPk, req.ReservationUnitPk)
	if err != nil {
		return nil, err
	}
	event := findEvent(events, req.ApplicationEventPk)
	if event == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application event not found in reservation unit")
	}

	matching := MatchingSchedules(selection, event.Schedules)
	if len(matching) != 1 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "selection must be covered by exactly one requested schedule")
	}
	schedule := matching[0]

	accepted, err := s.acceptedSlots(ctx, req.ReservationUnitPk, schedule.Pk)
	if err != nil {
		return nil, err
	}
	for _, key := range selection {
		if _, taken := accepted[key]; taken {
			return nil, appErrors.Clone(appErrors.ErrSlotTaken, "")
		}
	}

	first, last := slots[0], slots[len(slots)-1]
	decision := dto.AllocationDecision{
		Accepted:                   true,
		AllocatedReservationUnitPk: unit.Pk,
		ApplicationEventSchedulePk: schedule.Pk,
		AllocatedDay:               first.Day,
		AllocatedBegin:             first.BeginTime(),
		AllocatedEnd:               last.EndTime(),
	}

	created := schedule.Result == nil
	var result *models.ScheduleResult
	if created {
		result, err = s.decisions.Create(ctx, decision)
	} else {
		result, err = s.decisions.Update(ctx, decision)
	}
	if err != nil {
		return nil, s.mapSubmitError(err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	if s.metrics != nil {
		s.metrics.RecordAllocationDecision("accepted", outcome)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateUnit(ctx, req.ApplicationRoundPk, req.ReservationUnitPk); err != nil {
			s.logger.Warn("post-accept invalidation failed", zap.Int64("unit_pk", req.ReservationUnitPk), zap.Error(err))
		}
	}
	s.logger.Info("allocation accepted",
		zap.Int64("schedule_pk", result.SchedulePk),
		zap.Int64("unit_pk", unit.Pk),
		zap.Int("day", decision.AllocatedDay),
		zap.String("begin", decision.AllocatedBegin),
		zap.String("end", decision.AllocatedEnd),
		zap.Bool("created", created))

	return &dto.AllocationResponse{
		ApplicationEventSchedulePk: schedule.Pk,
		Created:                    created,
		AllocatedDay:               decision.AllocatedDay,
		AllocatedBegin:             decision.AllocatedBegin,
		AllocatedEnd:               decision.AllocatedEnd,
	}, nil
}

// Decline marks one schedule declined. A decline is a status change, not a
// removal, and also signals a refetch.
func (s *AllocationService) Decline(ctx context.Context, req dto.DeclineAllocationRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decline request")
	}

	if _, err := s.units.GetUnit(ctx, req.ApplicationRoundPk, req.ReservationUnitPk); err != nil {
		return err
	}
	if _, err := s.decisions.GetSchedule(ctx, req.ApplicationEventSchedulePk); err != nil {
		return err
	}
	if err := s.decisions.Decline(ctx, req.ApplicationEventSchedulePk); err != nil {
		return s.mapSubmitError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordAllocationDecision("declined", "updated")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateUnit(ctx, req.ApplicationRoundPk, req.ReservationUnitPk); err != nil {
			s.logger.Warn("post-decline invalidation failed", zap.Int64("unit_pk", req.ReservationUnitPk), zap.Error(err))
		}
	}
	s.logger.Info("allocation declined", zap.Int64("schedule_pk", req.ApplicationEventSchedulePk))
	return nil
}

// AcceptedSlotKeys derives the occupied slot set of a unit from its stored
// accepted results. Advisory only: the database remains authoritative.
func (s *AllocationService) AcceptedSlotKeys(ctx context.Context, unitPk int64) (map[string]struct{}, error) {
	return s.acceptedSlots(ctx, unitPk, 0)
}

// acceptedSlots expands accepted allocated windows into slot keys, skipping
// the schedule being re-decided so an update never collides with itself.
func (s *AllocationService) acceptedSlots(ctx context.Context, unitPk, skipSchedulePk int64) (map[string]struct{}, error) {
	results, err := s.decisions.ListAcceptedByUnit(ctx, unitPk)
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]struct{})
	for _, result := range results {
		if result.SchedulePk == skipSchedulePk {
			continue
		}
		if result.AllocatedDay == nil || result.AllocatedBegin == nil || result.AllocatedEnd == nil {
			continue
		}
		for _, key := range ScheduleSlotKeys(*result.AllocatedDay, *result.AllocatedBegin, *result.AllocatedEnd) {
			occupied[key] = struct{}{}
		}
	}
	return occupied, nil
}

// mapSubmitError distinguishes permission rejections from generic failures.
func (s *AllocationService) mapSubmitError(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgInsufficientPrivilege {
		return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, appErrors.ErrForbidden.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save allocation decision")
}

func parseSelection(keys []string) ([]models.Slot, error) {
	slots := make([]models.Slot, 0, len(keys))
	for _, key := range keys {
		slot, err := models.ParseSlotKey(key)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return slots[i].Minutes() < slots[j].Minutes()
	})
	return slots, nil
}

// contiguousSlots reports whether the sorted slots form one unbroken
// half-hour run. Next never crosses a day, so this also rejects selections
// spanning several days.
func contiguousSlots(slots []models.Slot) bool {
	for i := 0; i < len(slots)-1; i++ {
		if slots[i+1] != slots[i].Next() {
			return false
		}
	}
	return true
}

func findEvent(events []models.ApplicationEvent, pk int64) *models.ApplicationEvent {
	for i := range events {
		if events[i].Pk == pk {
			return &events[i]
		}
	}
	return nil
}
