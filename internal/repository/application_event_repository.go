package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/venuehub/allocation-api/internal/models"
)

// ApplicationEventRepository loads application events with their schedule
// preferences and any attached decision results.
type ApplicationEventRepository struct {
	db *sqlx.DB
}

// NewApplicationEventRepository builds repository.
func NewApplicationEventRepository(db *sqlx.DB) *ApplicationEventRepository {
	return &ApplicationEventRepository{db: db}
}

type scheduleRow struct {
	Pk                         int64          `db:"pk"`
	ApplicationEventPk         int64          `db:"application_event_pk"`
	Day                        int            `db:"day"`
	Begin                      string         `db:"begin_time"`
	End                        string         `db:"end_time"`
	Priority                   int            `db:"priority"`
	ResultPk                   sql.NullInt64  `db:"result_pk"`
	ResultAccepted             sql.NullBool   `db:"result_accepted"`
	ResultDeclined             sql.NullBool   `db:"result_declined"`
	AllocatedReservationUnitPk sql.NullInt64  `db:"allocated_reservation_unit_pk"`
	AllocatedDay               sql.NullInt64  `db:"allocated_day"`
	AllocatedBegin             sql.NullString `db:"allocated_begin"`
	AllocatedEnd               sql.NullString `db:"allocated_end"`
}

func (row scheduleRow) toModel() models.ApplicationEventSchedule {
	schedule := models.ApplicationEventSchedule{
		Pk:                 row.Pk,
		ApplicationEventPk: row.ApplicationEventPk,
		Day:                row.Day,
		Begin:              row.Begin,
		End:                row.End,
		Priority:           row.Priority,
	}
	if row.ResultPk.Valid {
		result := &models.ScheduleResult{
			Pk:         row.ResultPk.Int64,
			SchedulePk: row.Pk,
			Accepted:   row.ResultAccepted.Bool,
			Declined:   row.ResultDeclined.Bool,
		}
		if row.AllocatedReservationUnitPk.Valid {
			unitPk := row.AllocatedReservationUnitPk.Int64
			result.AllocatedReservationUnitPk = &unitPk
		}
		if row.AllocatedDay.Valid {
			day := int(row.AllocatedDay.Int64)
			result.AllocatedDay = &day
		}
		if row.AllocatedBegin.Valid {
			begin := row.AllocatedBegin.String
			result.AllocatedBegin = &begin
		}
		if row.AllocatedEnd.Valid {
			end := row.AllocatedEnd.String
			result.AllocatedEnd = &end
		}
		schedule.Result = result
	}
	return schedule
}

// ListByUnit returns the events requesting time in a reservation unit,
// schedules and results attached, ordered by event name.
func (r *ApplicationEventRepository) ListByUnit(ctx context.Context, roundPk, unitPk int64) ([]models.ApplicationEvent, error) {
	const eventsQuery = `SELECT DISTINCT e.pk, e.name, e.min_duration, e.max_duration, e.events_per_week
FROM application_events e
JOIN application_event_units u ON u.application_event_pk = e.pk
WHERE e.application_round_pk = $1 AND u.reservation_unit_pk = $2
ORDER BY e.name ASC, e.pk ASC`

	var events []models.ApplicationEvent
	if err := r.db.SelectContext(ctx, &events, eventsQuery, roundPk, unitPk); err != nil {
		return nil, fmt.Errorf("list application events: %w", err)
	}
	if len(events) == 0 {
		return []models.ApplicationEvent{}, nil
	}

	pks := make([]int64, 0, len(events))
	for _, event := range events {
		pks = append(pks, event.Pk)
	}

	schedules, err := r.listSchedules(ctx, pks)
	if err != nil {
		return nil, err
	}

	byEvent := make(map[int64][]models.ApplicationEventSchedule, len(events))
	for _, schedule := range schedules {
		byEvent[schedule.ApplicationEventPk] = append(byEvent[schedule.ApplicationEventPk], schedule)
	}
	for i := range events {
		events[i].Schedules = byEvent[events[i].Pk]
	}
	return events, nil
}

func (r *ApplicationEventRepository) listSchedules(ctx context.Context, eventPks []int64) ([]models.ApplicationEventSchedule, error) {
	const query = `SELECT s.pk, s.application_event_pk, s.day, s.begin_time, s.end_time, s.priority,
       res.pk AS result_pk, res.accepted AS result_accepted, res.declined AS result_declined,
       res.allocated_reservation_unit_pk, res.allocated_day, res.allocated_begin, res.allocated_end
FROM application_event_schedules s
LEFT JOIN application_event_schedule_results res ON res.schedule_pk = s.pk
WHERE s.application_event_pk IN (?)
ORDER BY s.application_event_pk ASC, s.priority DESC, s.day ASC, s.begin_time ASC`

	expanded, args, err := sqlx.In(query, eventPks)
	if err != nil {
		return nil, fmt.Errorf("expand schedule query: %w", err)
	}
	expanded = r.db.Rebind(expanded)

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, expanded, args...); err != nil {
		return nil, fmt.Errorf("list application event schedules: %w", err)
	}

	schedules := make([]models.ApplicationEventSchedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, row.toModel())
	}
	return schedules, nil
}
