package models

// Schedule priority tiers. Primary preferences outrank secondary ones.
const (
	PrioritySecondary = 200
	PriorityPrimary   = 300
)

// ScheduleResult is the accept/decline outcome attached to one schedule,
// optionally carrying the concrete allocated day and time window.
type ScheduleResult struct {
	Pk                         int64   `db:"pk" json:"pk"`
	SchedulePk                 int64   `db:"schedule_pk" json:"schedulePk"`
	Accepted                   bool    `db:"accepted" json:"accepted"`
	Declined                   bool    `db:"declined" json:"declined"`
	AllocatedReservationUnitPk *int64  `db:"allocated_reservation_unit_pk" json:"allocatedReservationUnit,omitempty"`
	AllocatedDay               *int    `db:"allocated_day" json:"allocatedDay,omitempty"`
	AllocatedBegin             *string `db:"allocated_begin" json:"allocatedBegin,omitempty"`
	AllocatedEnd               *string `db:"allocated_end" json:"allocatedEnd,omitempty"`
}

// ApplicationEventSchedule is one day/time-window preference entry of an event.
// Begin and End are "HH:MM:SS" clock times on the same day (no midnight wrap).
type ApplicationEventSchedule struct {
	Pk                 int64           `db:"pk" json:"pk"`
	ApplicationEventPk int64           `db:"application_event_pk" json:"applicationEventPk"`
	Day                int             `db:"day" json:"day"`
	Begin              string          `db:"begin_time" json:"begin"`
	End                string          `db:"end_time" json:"end"`
	Priority           int             `db:"priority" json:"priority"`
	Result             *ScheduleResult `db:"-" json:"applicationEventScheduleResult,omitempty"`
}

// Unresolved reports whether the schedule still awaits a decision.
func (s ApplicationEventSchedule) Unresolved() bool {
	return s.Result == nil || (!s.Result.Accepted && !s.Result.Declined)
}

// ApplicationEvent is a requester's recurring time-use request with its
// ranked schedule preferences.
type ApplicationEvent struct {
	Pk            int64                      `db:"pk" json:"pk"`
	Name          string                     `db:"name" json:"name"`
	MinDuration   int                        `db:"min_duration" json:"minDuration"`
	MaxDuration   int                        `db:"max_duration" json:"maxDuration"`
	EventsPerWeek int                        `db:"events_per_week" json:"eventsPerWeek"`
	Schedules     []ApplicationEventSchedule `db:"-" json:"applicationEventSchedules"`
}

// EventGrouping partitions a reservation unit's events by decision state.
// An event may appear in several groups when its schedules differ in state.
type EventGrouping struct {
	Unallocated []ApplicationEvent `json:"unallocated"`
	Allocated   []ApplicationEvent `json:"allocated"`
	Declined    []ApplicationEvent `json:"declined"`
}
