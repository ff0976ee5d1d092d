package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

// ScheduleResultRepository persists accept/decline decisions per schedule.
type ScheduleResultRepository struct {
	db *sqlx.DB
}

// NewScheduleResultRepository builds repository.
func NewScheduleResultRepository(db *sqlx.DB) *ScheduleResultRepository {
	return &ScheduleResultRepository{db: db}
}

// GetSchedule fetches one schedule with its result, if any.
func (r *ScheduleResultRepository) GetSchedule(ctx context.Context, schedulePk int64) (*models.ApplicationEventSchedule, error) {
	const query = `SELECT s.pk, s.application_event_pk, s.day, s.begin_time, s.end_time, s.priority,
       res.pk AS result_pk, res.accepted AS result_accepted, res.declined AS result_declined,
       res.allocated_reservation_unit_pk, res.allocated_day, res.allocated_begin, res.allocated_end
FROM application_event_schedules s
LEFT JOIN application_event_schedule_results res ON res.schedule_pk = s.pk
WHERE s.pk = $1`

	var row scheduleRow
	if err := r.db.GetContext(ctx, &row, query, schedulePk); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application event schedule not found")
		}
		return nil, fmt.Errorf("get application event schedule: %w", err)
	}
	schedule := row.toModel()
	return &schedule, nil
}

// Create inserts a new decision result for a schedule.
func (r *ScheduleResultRepository) Create(ctx context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error) {
	const query = `INSERT INTO application_event_schedule_results
    (schedule_pk, accepted, declined, allocated_reservation_unit_pk, allocated_day, allocated_begin, allocated_end)
VALUES ($1, $2, false, $3, $4, $5, $6)
RETURNING pk`

	var pk int64
	err := r.db.QueryRowxContext(ctx, query,
		decision.ApplicationEventSchedulePk,
		decision.Accepted,
		decision.AllocatedReservationUnitPk,
		decision.AllocatedDay,
		decision.AllocatedBegin,
		decision.AllocatedEnd,
	).Scan(&pk)
	if err != nil {
		return nil, fmt.Errorf("create schedule result: %w", err)
	}

	return r.resultFromDecision(pk, decision), nil
}

// Update overwrites the decision result attached to a schedule.
func (r *ScheduleResultRepository) Update(ctx context.Context, decision dto.AllocationDecision) (*models.ScheduleResult, error) {
	const query = `UPDATE application_event_schedule_results
SET accepted = $2, declined = false,
    allocated_reservation_unit_pk = $3, allocated_day = $4, allocated_begin = $5, allocated_end = $6
WHERE schedule_pk = $1
RETURNING pk`

	var pk int64
	err := r.db.QueryRowxContext(ctx, query,
		decision.ApplicationEventSchedulePk,
		decision.Accepted,
		decision.AllocatedReservationUnitPk,
		decision.AllocatedDay,
		decision.AllocatedBegin,
		decision.AllocatedEnd,
	).Scan(&pk)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule result not found")
		}
		return nil, fmt.Errorf("update schedule result: %w", err)
	}

	return r.resultFromDecision(pk, decision), nil
}

// Decline marks a schedule declined, creating the result row when absent.
// Any previously allocated window is cleared.
func (r *ScheduleResultRepository) Decline(ctx context.Context, schedulePk int64) error {
	const query = `INSERT INTO application_event_schedule_results (schedule_pk, accepted, declined)
VALUES ($1, false, true)
ON CONFLICT (schedule_pk) DO UPDATE
SET accepted = false, declined = true,
    allocated_reservation_unit_pk = NULL, allocated_day = NULL, allocated_begin = NULL, allocated_end = NULL`

	if _, err := r.db.ExecContext(ctx, query, schedulePk); err != nil {
		return fmt.Errorf("decline schedule: %w", err)
	}
	return nil
}

// ListAcceptedByUnit returns accepted results whose allocation targets the
// given reservation unit, used to derive the occupied slot set.
func (r *ScheduleResultRepository) ListAcceptedByUnit(ctx context.Context, unitPk int64) ([]models.ScheduleResult, error) {
	const query = `SELECT pk, schedule_pk, accepted, declined,
       allocated_reservation_unit_pk, allocated_day, allocated_begin, allocated_end
FROM application_event_schedule_results
WHERE accepted = true AND allocated_reservation_unit_pk = $1`

	var results []models.ScheduleResult
	if err := r.db.SelectContext(ctx, &results, query, unitPk); err != nil {
		return nil, fmt.Errorf("list accepted schedule results: %w", err)
	}
	return results, nil
}

func (r *ScheduleResultRepository) resultFromDecision(pk int64, decision dto.AllocationDecision) *models.ScheduleResult {
	unitPk := decision.AllocatedReservationUnitPk
	day := decision.AllocatedDay
	begin := decision.AllocatedBegin
	end := decision.AllocatedEnd
	return &models.ScheduleResult{
		Pk:                         pk,
		SchedulePk:                 decision.ApplicationEventSchedulePk,
		Accepted:                   decision.Accepted,
		Declined:                   false,
		AllocatedReservationUnitPk: &unitPk,
		AllocatedDay:               &day,
		AllocatedBegin:             &begin,
		AllocatedEnd:               &end,
	}
}
