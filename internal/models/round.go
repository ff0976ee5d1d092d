package models

import "time"

// Application round lifecycle states as reported by the allocation backend.
const (
	RoundStatusDraft        = "draft"
	RoundStatusInAllocation = "in_allocation"
	RoundStatusAllocated    = "allocated"
	RoundStatusHandled      = "handled"
)

// ApplicationRound is one seasonal allocation period.
type ApplicationRound struct {
	Pk                 int64      `db:"pk" json:"pk"`
	Name               string     `db:"name" json:"name"`
	Status             string     `db:"status" json:"status"`
	AllocationStarted  *time.Time `db:"allocation_started" json:"allocationStarted,omitempty"`
	AllocationFinished *time.Time `db:"allocation_finished" json:"allocationFinished,omitempty"`
}

// Allocating reports whether the backend solver is still running for this round.
func (r ApplicationRound) Allocating() bool {
	return r.Status == RoundStatusInAllocation
}

// ReservationUnit is one allocatable space within a round.
type ReservationUnit struct {
	Pk                 int64  `db:"pk" json:"pk"`
	ApplicationRoundPk int64  `db:"application_round_pk" json:"applicationRoundPk"`
	Name               string `db:"name" json:"name"`
}
