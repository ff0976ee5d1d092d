package dto

// AcceptAllocationRequest assigns the confirmed selection to an application
// event. SlotKeys may be omitted to use the caller's stored selection.
type AcceptAllocationRequest struct {
	ApplicationRoundPk int64    `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64    `json:"reservationUnitPk" validate:"required,gt=0"`
	ApplicationEventPk int64    `json:"applicationEventPk" validate:"required,gt=0"`
	SlotKeys           []string `json:"slotKeys,omitempty"`
}

// DeclineAllocationRequest marks one schedule as declined.
type DeclineAllocationRequest struct {
	ApplicationRoundPk         int64 `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk          int64 `json:"reservationUnitPk" validate:"required,gt=0"`
	ApplicationEventSchedulePk int64 `json:"applicationEventSchedulePk" validate:"required,gt=0"`
}

// AllocationDecision is the persisted accept payload.
type AllocationDecision struct {
	Accepted                   bool   `json:"accepted"`
	AllocatedReservationUnitPk int64  `json:"allocatedReservationUnit"`
	ApplicationEventSchedulePk int64  `json:"applicationEventSchedule"`
	AllocatedDay               int    `json:"allocatedDay"`
	AllocatedBegin             string `json:"allocatedBegin"`
	AllocatedEnd               string `json:"allocatedEnd"`
}

// AllocationResponse reports the stored decision.
type AllocationResponse struct {
	ApplicationEventSchedulePk int64  `json:"applicationEventSchedulePk"`
	Created                    bool   `json:"created"`
	AllocatedDay               int    `json:"allocatedDay"`
	AllocatedBegin             string `json:"allocatedBegin"`
	AllocatedEnd               string `json:"allocatedEnd"`
}
